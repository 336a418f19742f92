package weather

// ForecastSample is a single time-stamped reading as delivered by the weather proxy.
// Samples are values: they are never mutated after decoding.
type ForecastSample struct {
	Timestamp            string  `json:"timestamp"`   // opaque provider string (dt_txt)
	Temperature          float64 `json:"temperature"` // °F
	Humidity             float64 `json:"humidity"`    // percent, passed through unchecked
	WindSpeed            float64 `json:"windSpeed"`   // MPH
	ConditionIcon        string  `json:"icon"`
	ConditionDescription string  `json:"description"`
}

// ForecastSeries is the ordered list of samples returned for one query.
// Index 0 is the most current sample; the server order is kept as-is.
type ForecastSeries []ForecastSample

// CurrentWeatherView is the projection painted in the "today" region.
type CurrentWeatherView struct {
	Sample ForecastSample `json:"sample"`
	Label  string         `json:"label"`
}

// ForecastView holds at most one sample per forecast slot, in arrival order.
type ForecastView []ForecastSample

// Normalized is the display-ready result of a forecast query.
type Normalized struct {
	Current  CurrentWeatherView `json:"current"`
	Forecast ForecastView       `json:"forecast"`
}

// HistoryEntry is a previously searched city as recorded by the backend.
// ID is the only key used for deletion; Name is not guaranteed to be unique.
type HistoryEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
