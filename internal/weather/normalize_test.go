package weather

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// series builds n samples spaced step apart, starting at start.
func series(n int, start time.Time, step time.Duration) ForecastSeries {
	out := make(ForecastSeries, n)
	for i := range out {
		out[i] = ForecastSample{
			Timestamp:            start.Add(time.Duration(i) * step).Format(time.DateTime),
			Temperature:          50 + float64(i),
			Humidity:             40,
			WindSpeed:            3.5,
			ConditionIcon:        "04d",
			ConditionDescription: fmt.Sprintf("sample %d", i),
		}
	}
	return out
}

var boiseStart = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNormalizeLengths(t *testing.T) {
	for _, n := range []int{1, 2, 5, 6, 7, 40} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			s := series(n, boiseStart, 3*time.Hour)

			got, err := Normalize(s)
			require.NoError(t, err)

			assert.Equal(t, s[0], got.Current.Sample)
			assert.Equal(t, s[0].Timestamp, got.Current.Label)
			assert.Len(t, got.Forecast, min(5, n-1))
			for i, f := range got.Forecast {
				assert.Equal(t, s[i+1], f)
			}
		})
	}
}

func TestNormalizeEmptySeries(t *testing.T) {
	_, err := Normalize(nil)
	assert.True(t, errors.Is(err, ErrEmptySeries))

	_, err = Normalize(ForecastSeries{})
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestNormalizeBoiseScenario(t *testing.T) {
	s := series(40, boiseStart, 3*time.Hour)

	got, err := Normalize(s)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10 12:00:00", got.Current.Label)
	require.Len(t, got.Forecast, 5)
	assert.Equal(t, ForecastView(s[1:6]), got.Forecast)
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	s := series(7, boiseStart, 3*time.Hour)

	got, err := Normalize(s)
	require.NoError(t, err)

	got.Forecast[0].Temperature = -100
	assert.Equal(t, 51.0, s[1].Temperature)
}

func TestNewNormalizerValidation(t *testing.T) {
	_, err := NewNormalizer(0, PolicySamples)
	assert.Error(t, err)

	_, err = NewNormalizer(5, DayPolicy("weekly"))
	assert.Error(t, err)

	n, err := NewNormalizer(3, "")
	require.NoError(t, err)
	assert.Equal(t, PolicySamples, n.Policy())

	got, err := n.Normalize(series(10, boiseStart, time.Hour))
	require.NoError(t, err)
	assert.Len(t, got.Forecast, 3)
}

func TestCalendarDaysPolicy(t *testing.T) {
	n, err := NewNormalizer(5, PolicyCalendarDays)
	require.NoError(t, err)

	// 40 samples at 3h steps from 12:00 run until 2025-03-15 09:00. The
	// partial last date still fills a slot with its sample nearest noon.
	s := series(40, boiseStart, 3*time.Hour)

	got, err := n.Normalize(s)
	require.NoError(t, err)

	require.Len(t, got.Forecast, 5)
	want := []string{
		"2025-03-11 12:00:00",
		"2025-03-12 12:00:00",
		"2025-03-13 12:00:00",
		"2025-03-14 12:00:00",
		"2025-03-15 09:00:00",
	}
	for i, f := range got.Forecast {
		assert.Equal(t, want[i], f.Timestamp)
	}
}

func TestCalendarDaysClosestToNoon(t *testing.T) {
	current := ForecastSample{Timestamp: "2025-03-10 21:00:00"}
	rest := []ForecastSample{
		{Timestamp: "2025-03-11 00:00:00"},
		{Timestamp: "2025-03-11 09:00:00"},
		{Timestamp: "2025-03-11 15:00:00"},
		{Timestamp: "not a time"},
		{Timestamp: "2025-03-12 03:00:00"},
		{Timestamp: "2025-03-13 18:00:00"},
	}

	got := SelectCalendarDays(current, rest, 2)

	require.Len(t, got, 2)
	// 09:00 and 15:00 tie on distance; the earlier one wins.
	assert.Equal(t, "2025-03-11 09:00:00", got[0].Timestamp)
	assert.Equal(t, "2025-03-12 03:00:00", got[1].Timestamp)
}

func TestSelectNextSamplesShortTail(t *testing.T) {
	rest := []ForecastSample{{Timestamp: "a"}, {Timestamp: "b"}}

	got := SelectNextSamples(ForecastSample{}, rest, 5)

	assert.Equal(t, ForecastView{{Timestamp: "a"}, {Timestamp: "b"}}, got)
}
