package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func region() *html.Node {
	return el(atom.Div)
}

func sample(ts string) weather.ForecastSample {
	return weather.ForecastSample{
		Timestamp:            ts,
		Temperature:          48.2,
		Humidity:             61,
		WindSpeed:            7,
		ConditionIcon:        "10d",
		ConditionDescription: "light rain",
	}
}

func texts(nodes []*html.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = TextContent(n)
	}
	return out
}

func TestPaintCurrent(t *testing.T) {
	r := region()
	s := sample("2025-03-10 12:00:00")

	PaintCurrent(r, weather.CurrentWeatherView{Sample: s, Label: s.Timestamp}, Options{})

	kids := Children(r)
	require.Len(t, kids, 5)
	assert.Equal(t, "Weather on Mar 10, 2025 12:00 PM", TextContent(kids[0]))
	assert.Equal(t, "https://openweathermap.org/img/w/10d.png", Attr(kids[1], "src"))
	assert.Equal(t, "light rain", Attr(kids[1], "alt"))
	assert.Equal(t, []string{"Temp: 48.2°F", "Wind: 7 MPH", "Humidity: 61%"}, texts(kids[2:]))
}

func TestPaintCurrentKeepsUnparseableLabel(t *testing.T) {
	r := region()
	s := sample("tomorrow-ish")

	PaintCurrent(r, weather.CurrentWeatherView{Sample: s, Label: s.Timestamp}, Options{IconBaseURL: "http://icons.local/"})

	kids := Children(r)
	assert.Equal(t, "Weather on tomorrow-ish", TextContent(kids[0]))
	assert.Equal(t, "http://icons.local/10d.png", Attr(kids[1], "src"))
}

func TestPaintCurrentReplacesPreviousContent(t *testing.T) {
	r := region()
	PaintError(r, "boom")
	s := sample("2025-03-10 12:00:00")

	PaintCurrent(r, weather.CurrentWeatherView{Sample: s, Label: s.Timestamp}, Options{})

	assert.Empty(t, ByClass(r, "alert"))
	assert.Len(t, Children(r), 5)
}

func TestPaintForecast(t *testing.T) {
	r := region()
	view := weather.ForecastView{
		sample("2025-03-10 15:00:00"),
		sample("2025-03-10 18:00:00"),
		sample("2025-03-10 21:00:00"),
	}

	PaintForecast(r, view, Options{})

	kids := Children(r)
	require.Len(t, kids, 4)
	assert.Equal(t, ForecastHeading, TextContent(kids[0]))

	cards := ByClass(r, "forecast-card")
	require.Len(t, cards, 3)
	titles := ByClass(r, "card-title")
	assert.Equal(t, []string{"2025-03-10 15:00:00", "2025-03-10 18:00:00", "2025-03-10 21:00:00"}, texts(titles))

	lines := ByClass(cards[0], "card-text")
	assert.Equal(t, []string{"Temp: 48.2 °F", "Wind: 7 MPH", "Humidity: 61 %"}, texts(lines))
}

func TestPaintForecastCardWithoutIcon(t *testing.T) {
	r := region()
	s := sample("2025-03-10 15:00:00")
	s.ConditionIcon = ""

	PaintForecast(r, weather.ForecastView{s}, Options{})

	require.Len(t, ByClass(r, "forecast-card"), 1)
	assert.Empty(t, ByTag(r, atom.Img))
}

func TestPaintCurrentWithoutIcon(t *testing.T) {
	r := region()
	s := sample("2025-03-10 12:00:00")
	s.ConditionIcon = ""
	s.ConditionDescription = ""

	PaintCurrent(r, weather.CurrentWeatherView{Sample: s, Label: s.Timestamp}, Options{})

	assert.Empty(t, ByTag(r, atom.Img))
	kids := Children(r)
	require.Len(t, kids, 4)
	assert.Equal(t, "Weather on Mar 10, 2025 12:00 PM", TextContent(kids[0]))
	assert.Equal(t, []string{"Temp: 48.2°F", "Wind: 7 MPH", "Humidity: 61%"}, texts(kids[1:]))
}

func TestPaintForecastEmpty(t *testing.T) {
	r := region()
	PaintForecast(r, weather.ForecastView{sample("x")}, Options{})

	PaintForecast(r, nil, Options{})

	assert.Len(t, Children(r), 1)
	assert.Empty(t, ByClass(r, "forecast-card"))
}

func TestPaintHistoryNewestFirst(t *testing.T) {
	r := region()

	PaintHistory(r, []weather.HistoryEntry{{ID: "1", Name: "Reno"}, {ID: "2", Name: "Austin"}}, Options{})

	buttons := ByClass(r, "history-btn")
	assert.Equal(t, []string{"Austin", "Reno"}, texts(buttons))

	rows := Children(r)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", Attr(rows[0], "data-history-id"))

	forms := ByTag(rows[0], atom.Form)
	require.Len(t, forms, 2)
	assert.Equal(t, DefaultSelectAction, Attr(forms[0], "action"))
	assert.Equal(t, DefaultDeleteAction, Attr(forms[1], "action"))

	del := ByClass(rows[0], "btn-danger")
	require.Len(t, del, 1)
	assert.Equal(t, "X", TextContent(del[0]))

	hidden := ByTag(forms[1], atom.Input)
	require.Len(t, hidden, 1)
	assert.Equal(t, "id", Attr(hidden[0], "name"))
	assert.Equal(t, "2", Attr(hidden[0], "value"))
}

func TestPaintHistoryEmpty(t *testing.T) {
	r := region()
	PaintHistory(r, []weather.HistoryEntry{{ID: "1", Name: "Reno"}}, Options{})

	PaintHistory(r, nil, Options{})

	kids := Children(r)
	require.Len(t, kids, 1)
	assert.Equal(t, EmptyHistoryText, TextContent(kids[0]))
	assert.Empty(t, ByClass(r, "history-btn"))
}

func TestPaintHistoryIsIdempotent(t *testing.T) {
	r := region()
	entries := []weather.HistoryEntry{{ID: "1", Name: "Reno"}, {ID: "2", Name: "Austin"}}

	PaintHistory(r, []weather.HistoryEntry{{ID: "9", Name: "Nome"}}, Options{})
	PaintHistory(r, entries, Options{})
	var first bytes.Buffer
	require.NoError(t, html.Render(&first, r))

	PaintHistory(r, entries, Options{})
	var second bytes.Buffer
	require.NoError(t, html.Render(&second, r))

	assert.Equal(t, first.String(), second.String())
	assert.NotContains(t, second.String(), "Nome")
}

func TestPaintHistoryDuplicateNames(t *testing.T) {
	r := region()

	PaintHistory(r, []weather.HistoryEntry{{ID: "1", Name: "Paris"}, {ID: "2", Name: "Paris"}}, Options{})

	rows := Children(r)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", Attr(rows[0], "data-history-id"))
	assert.Equal(t, "1", Attr(rows[1], "data-history-id"))
}

func TestPaintPanicsOnNilRegion(t *testing.T) {
	assert.Panics(t, func() { PaintCurrent(nil, weather.CurrentWeatherView{}, Options{}) })
	assert.Panics(t, func() { PaintForecast(nil, nil, Options{}) })
	assert.Panics(t, func() { PaintHistory(nil, nil, Options{}) })
	assert.Panics(t, func() { PaintError(nil, "x") })
}

func TestDocumentSkeleton(t *testing.T) {
	doc := NewDocument("Weather Dashboard", "")

	assert.Same(t, doc.SearchInput, ByID(doc.Root, SearchInputID))
	assert.Same(t, doc.Today, ByID(doc.Root, TodayID))
	assert.Same(t, doc.Forecast, ByID(doc.Root, ForecastID))
	assert.Same(t, doc.History, ByID(doc.Root, HistoryID))
	assert.Equal(t, DefaultSearchAction, Attr(ByID(doc.Root, SearchFormID), "action"))

	doc.SetInputValue("Boise")
	assert.Equal(t, "Boise", doc.InputValue())
	doc.SetInputValue("")
	assert.Empty(t, doc.InputValue())

	PaintError(doc.Today, `<script>alert("x")</script>`)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `id="today"`)
	assert.NotContains(t, out, "<script>")
}
