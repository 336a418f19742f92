package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Region ids in the page skeleton.
const (
	SearchFormID  = "search-form"
	SearchInputID = "search-input"
	TodayID       = "today"
	ForecastID    = "forecast"
	HistoryID     = "history"
)

const bootstrapCSS = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css"

// Document is the dashboard page with handles on the regions the controller
// paints into. It is not safe for concurrent use.
type Document struct {
	Root        *html.Node
	SearchInput *html.Node
	Today       *html.Node
	Forecast    *html.Node
	History     *html.Node
}

// NewDocument builds the empty page skeleton. searchAction is where the
// search form posts; "" means "/search".
func NewDocument(title, searchAction string) *Document {
	if searchAction == "" {
		searchAction = DefaultSearchAction
	}

	input := el(atom.Input,
		"id", SearchInputID,
		"name", "city",
		"type", "text",
		"class", "form-control",
		"placeholder", "Enter a city",
		"autocomplete", "off",
	)
	form := appendAll(
		el(atom.Form, "id", SearchFormID, "method", "post", "action", searchAction, "class", "form-inline mb-3"),
		textEl(atom.Label, "Search for a City:", "for", SearchInputID, "class", "form-label"),
		input,
		textEl(atom.Button, "Search", "type", "submit", "class", "btn btn-primary mt-2 w-100"),
	)

	history := el(atom.Div, "id", HistoryID, "class", "list-group mt-3")
	today := el(atom.Div, "id", TodayID, "class", "mt-3 p-3 border")
	forecast := el(atom.Div, "id", ForecastID, "class", "row mt-3 g-2")

	sidebar := appendAll(el(atom.Aside, "class", "col-lg-3 pb-3"), form, el(atom.Hr), history)
	main := appendAll(el(atom.Main, "class", "col-lg-9 pb-3"), today, forecast)

	head := appendAll(el(atom.Head),
		el(atom.Meta, "charset", "utf-8"),
		el(atom.Meta, "name", "viewport", "content", "width=device-width, initial-scale=1"),
		textEl(atom.Title, title),
		el(atom.Link, "rel", "stylesheet", "href", bootstrapCSS),
	)
	body := appendAll(el(atom.Body),
		appendAll(el(atom.Header, "class", "p-4 mb-3 bg-dark text-white text-center"), textEl(atom.H1, title)),
		appendAll(el(atom.Div, "class", "container-fluid"),
			appendAll(el(atom.Div, "class", "row"), sidebar, main),
		),
	)

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root.AppendChild(appendAll(el(atom.Html, "lang", "en"), head, body))

	return &Document{
		Root:        root,
		SearchInput: input,
		Today:       today,
		Forecast:    forecast,
		History:     history,
	}
}

// Render serialises the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.Root); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}

// InputValue returns the current value of the search input.
func (d *Document) InputValue() string {
	return Attr(d.SearchInput, "value")
}

// SetInputValue replaces the search input's value; "" clears it.
func (d *Document) SetInputValue(v string) {
	SetAttr(d.SearchInput, "value", v)
}
