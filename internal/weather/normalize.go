package weather

import "fmt"

// DefaultForecastDays is the number of forecast cards shown by the dashboard.
const DefaultForecastDays = 5

// Normalizer turns a raw series into current and forecast views.
type Normalizer struct {
	days   int
	policy DayPolicy
	slots  DaySelector
}

// NewNormalizer creates a Normalizer that fills up to days forecast slots
// using the given policy.
func NewNormalizer(days int, policy DayPolicy) (*Normalizer, error) {
	if days <= 0 {
		return nil, fmt.Errorf("forecast days must be greater than zero")
	}
	sel, err := SelectorFor(policy)
	if err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicySamples
	}
	return &Normalizer{days: days, policy: policy, slots: sel}, nil
}

// Policy reports the day-selection policy in use.
func (n *Normalizer) Policy() DayPolicy { return n.policy }

// Normalize splits series into the current sample and the forecast slots.
// It fails with ErrEmptySeries when series has no samples. Fewer remaining
// samples than slots yields a shorter forecast, never placeholders.
func (n *Normalizer) Normalize(series ForecastSeries) (Normalized, error) {
	if len(series) == 0 {
		return Normalized{}, ErrEmptySeries
	}

	current := series[0]
	return Normalized{
		Current: CurrentWeatherView{
			Sample: current,
			Label:  current.Timestamp,
		},
		Forecast: n.slots(current, series[1:], n.days),
	}, nil
}

// Normalize applies the default policy: the five samples after the current one.
func Normalize(series ForecastSeries) (Normalized, error) {
	n := &Normalizer{days: DefaultForecastDays, policy: PolicySamples, slots: SelectNextSamples}
	return n.Normalize(series)
}
