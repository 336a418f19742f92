// Package render turns normalized weather data into HTML element trees.
// Every Paint function replaces the whole content of its region, so painting
// twice with the same input leaves the same tree.
package render

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultIconBaseURL  = "https://openweathermap.org/img/w"
	DefaultSearchAction = "/search"
	DefaultSelectAction = "/history/select"
	DefaultDeleteAction = "/history/delete"

	// EmptyHistoryText is shown when there is no search history.
	EmptyHistoryText = "No Previous Search History"
	ForecastHeading  = "5-Day Forecast:"

	headingLayout = "Jan 2, 2006 3:04 PM"
)

// Options controls URLs written into painted trees.
type Options struct {
	IconBaseURL  string
	SelectAction string
	DeleteAction string
}

func (o Options) withDefaults() Options {
	if o.IconBaseURL == "" {
		o.IconBaseURL = DefaultIconBaseURL
	}
	o.IconBaseURL = strings.TrimRight(o.IconBaseURL, "/")
	if o.SelectAction == "" {
		o.SelectAction = DefaultSelectAction
	}
	if o.DeleteAction == "" {
		o.DeleteAction = DefaultDeleteAction
	}
	return o
}

// IconURL returns the image URL for a condition icon code.
func (o Options) IconURL(icon string) string {
	return o.withDefaults().IconBaseURL + "/" + icon + ".png"
}

// PaintCurrent replaces region with the current conditions.
func PaintCurrent(region *html.Node, view weather.CurrentWeatherView, opts Options) {
	mustRegion(region, "PaintCurrent")
	clearChildren(region)

	s := view.Sample
	region.AppendChild(textEl(atom.H2, "Weather on "+formatLabel(view.Label), "class", "h3"))
	if s.ConditionIcon != "" {
		region.AppendChild(el(atom.Img, "class", "weather-img", "src", opts.IconURL(s.ConditionIcon), "alt", s.ConditionDescription))
	}
	appendAll(region,
		textEl(atom.P, "Temp: "+formatNumber(s.Temperature)+"°F"),
		textEl(atom.P, "Wind: "+formatNumber(s.WindSpeed)+" MPH"),
		textEl(atom.P, "Humidity: "+formatNumber(s.Humidity)+"%"),
	)
}

// PaintForecast replaces region with a heading and one card per sample.
func PaintForecast(region *html.Node, view weather.ForecastView, opts Options) {
	mustRegion(region, "PaintForecast")
	clearChildren(region)

	region.AppendChild(textEl(atom.H4, ForecastHeading, "class", "col-12"))
	for _, s := range view {
		region.AppendChild(forecastCard(s, opts))
	}
}

func forecastCard(s weather.ForecastSample, opts Options) *html.Node {
	body := appendAll(el(atom.Div, "class", "card-body p-2"),
		textEl(atom.H5, s.Timestamp, "class", "card-title"),
	)
	if s.ConditionIcon != "" {
		body.AppendChild(el(atom.Img, "src", opts.IconURL(s.ConditionIcon), "alt", s.ConditionDescription))
	}
	appendAll(body,
		textEl(atom.P, "Temp: "+formatNumber(s.Temperature)+" °F", "class", "card-text"),
		textEl(atom.P, "Wind: "+formatNumber(s.WindSpeed)+" MPH", "class", "card-text"),
		textEl(atom.P, "Humidity: "+formatNumber(s.Humidity)+" %", "class", "card-text"),
	)

	card := appendAll(el(atom.Div, "class", "forecast-card card text-white bg-primary h-100"), body)
	return appendAll(el(atom.Div, "class", "col-auto"), card)
}

// PaintHistory replaces region with one row per entry, newest first.
// entries is expected in server order (oldest first).
func PaintHistory(region *html.Node, entries []weather.HistoryEntry, opts Options) {
	mustRegion(region, "PaintHistory")
	clearChildren(region)

	if len(entries) == 0 {
		region.AppendChild(textEl(atom.P, EmptyHistoryText, "class", "text-center"))
		return
	}

	opts = opts.withDefaults()
	for i := len(entries) - 1; i >= 0; i-- {
		region.AppendChild(historyRow(entries[i], opts))
	}
}

func historyRow(e weather.HistoryEntry, opts Options) *html.Node {
	sel := appendAll(el(atom.Form, "method", "post", "action", opts.SelectAction, "class", "col-10"),
		el(atom.Input, "type", "hidden", "name", "id", "value", e.ID),
		el(atom.Input, "type", "hidden", "name", "name", "value", e.Name),
		textEl(atom.Button, e.Name, "type", "submit", "class", "history-btn btn btn-secondary col-10"),
	)
	del := appendAll(el(atom.Form, "method", "post", "action", opts.DeleteAction, "class", "col-2"),
		el(atom.Input, "type", "hidden", "name", "id", "value", e.ID),
		textEl(atom.Button, "X", "type", "submit", "class", "btn btn-danger col-2", "aria-label", "Delete "+e.Name),
	)
	return appendAll(
		el(atom.Div, "class", "display-flex gap-2 col-12 m-1", "data-history-id", e.ID),
		sel, del,
	)
}

// PaintError replaces region with a single alert.
func PaintError(region *html.Node, msg string) {
	mustRegion(region, "PaintError")
	clearChildren(region)
	region.AppendChild(textEl(atom.Div, msg, "class", "alert alert-danger", "role", "alert"))
}

// Clear empties region.
func Clear(region *html.Node) {
	mustRegion(region, "Clear")
	clearChildren(region)
}

func mustRegion(region *html.Node, op string) {
	if region == nil {
		panic("render: " + op + " called with nil region")
	}
}

// formatLabel renders a provider timestamp for the heading; unrecognised
// values are shown as-is.
func formatLabel(label string) string {
	t, err := time.Parse(time.DateTime, label)
	if err != nil {
		return label
	}
	return t.Format(headingLayout)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
