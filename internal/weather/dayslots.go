package weather

import (
	"fmt"
	"time"
)

// DayPolicy names a strategy for picking forecast slots out of a series tail.
type DayPolicy string

const (
	// PolicySamples takes the next N raw samples after the current one.
	PolicySamples DayPolicy = "samples"
	// PolicyCalendarDays takes one sample per calendar date after the current date.
	PolicyCalendarDays DayPolicy = "calendar"
)

// timestampLayout is the dt_txt format used by the proxy ("2006-01-02 15:04:05").
const timestampLayout = time.DateTime

// DaySelector picks at most days samples from rest, which is the series
// without its current sample. Implementations must keep arrival order.
type DaySelector func(current ForecastSample, rest []ForecastSample, days int) ForecastView

// SelectorFor returns the selector registered for policy.
func SelectorFor(policy DayPolicy) (DaySelector, error) {
	switch policy {
	case PolicySamples, "":
		return SelectNextSamples, nil
	case PolicyCalendarDays:
		return SelectCalendarDays, nil
	default:
		return nil, fmt.Errorf("unknown forecast day policy %q", policy)
	}
}

// SelectNextSamples returns rest[0:days], or all of rest when it is shorter.
func SelectNextSamples(_ ForecastSample, rest []ForecastSample, days int) ForecastView {
	if days > len(rest) {
		days = len(rest)
	}
	out := make(ForecastView, days)
	copy(out, rest[:days])
	return out
}

// SelectCalendarDays groups samples by calendar date, skipping the date of the
// current sample, and keeps the sample closest to midday for each date.
// Samples with an unparseable timestamp are ignored.
func SelectCalendarDays(current ForecastSample, rest []ForecastSample, days int) ForecastView {
	type dayKey string

	var (
		order []dayKey
		best  = make(map[dayKey]ForecastSample)
		dist  = make(map[dayKey]time.Duration)
	)

	var skip dayKey
	if ts, err := time.Parse(timestampLayout, current.Timestamp); err == nil {
		skip = dayKey(ts.Format(time.DateOnly))
	}

	for _, s := range rest {
		ts, err := time.Parse(timestampLayout, s.Timestamp)
		if err != nil {
			continue
		}
		k := dayKey(ts.Format(time.DateOnly))
		if k == skip {
			continue
		}

		noon := time.Date(ts.Year(), ts.Month(), ts.Day(), 12, 0, 0, 0, ts.Location())
		d := ts.Sub(noon)
		if d < 0 {
			d = -d
		}

		prev, seen := dist[k]
		if !seen {
			if len(order) >= days {
				// Dates arrive in order, so nothing later can fill a slot.
				break
			}
			order = append(order, k)
		}
		if !seen || d < prev {
			best[k] = s
			dist[k] = d
		}
	}

	out := make(ForecastView, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}
