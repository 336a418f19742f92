package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// ForecastRequest is the body sent to POST /api/weather/.
type ForecastRequest struct {
	City string `json:"city" validate:"required"`
}

// ForecastResponse is the body returned by POST /api/weather/.
// A missing or null list is a shape error; an empty list is not.
type ForecastResponse struct {
	List []SamplePayload `json:"list" validate:"required,dive"`
}

// SamplePayload mirrors one entry of the provider's 3-hourly forecast list.
type SamplePayload struct {
	DtTxt   string             `json:"dt_txt" validate:"required"`
	Main    MainPayload        `json:"main"`
	Wind    WindPayload        `json:"wind"`
	Weather []ConditionPayload `json:"weather"`
}

type MainPayload struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type WindPayload struct {
	Speed float64 `json:"speed"`
}

type ConditionPayload struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// HistoryEntryPayload is one element of GET /api/weather/history.
// Backends differ on whether ids are strings or numbers; both are accepted.
type HistoryEntryPayload struct {
	ID   FlexibleID `json:"id" validate:"required"`
	Name string     `json:"name" validate:"required"`
}

// FlexibleID decodes a JSON string or number into its textual form.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %w", err)
		}
		*f = FlexibleID(n.String())
		return nil
	}
}

var (
	errEmptyBody    = errors.New("empty response body")
	errBodyTooLarge = errors.New("response body too large")
)

// ToSample converts a wire sample into the domain value. A sample without a
// condition keeps an empty icon and description.
func (p SamplePayload) ToSample() weather.ForecastSample {
	s := weather.ForecastSample{
		Timestamp:   p.DtTxt,
		Temperature: p.Main.Temp,
		Humidity:    p.Main.Humidity,
		WindSpeed:   p.Wind.Speed,
	}
	if len(p.Weather) > 0 {
		s.ConditionIcon = p.Weather[0].Icon
		s.ConditionDescription = p.Weather[0].Description
	}
	return s
}

// PayloadFromSample is the inverse of ToSample, used by fakes and tooling.
func PayloadFromSample(s weather.ForecastSample) SamplePayload {
	p := SamplePayload{
		DtTxt: s.Timestamp,
		Main:  MainPayload{Temp: s.Temperature, Humidity: s.Humidity},
		Wind:  WindPayload{Speed: s.WindSpeed},
	}
	if s.ConditionIcon != "" || s.ConditionDescription != "" {
		p.Weather = []ConditionPayload{{Icon: s.ConditionIcon, Description: s.ConditionDescription}}
	}
	return p
}

func decodeForecast(body []byte) (weather.ForecastSeries, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}

	var resp ForecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if err := validate.Struct(resp); err != nil {
		return nil, err
	}

	series := make(weather.ForecastSeries, len(resp.List))
	for i, p := range resp.List {
		series[i] = p.ToSample()
	}
	return series, nil
}

func decodeHistory(body []byte) ([]weather.HistoryEntry, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}

	var payload []HistoryEntryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("history list is null")
	}

	entries := make([]weather.HistoryEntry, 0, len(payload))
	for i, p := range payload {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, weather.HistoryEntry{
			ID:   string(p.ID),
			Name: p.Name,
		})
	}
	return entries, nil
}
