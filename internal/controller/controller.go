// Package controller sequences user commands: fetch, normalize, paint, and
// refresh the history. Handlers may run concurrently; the document is locked
// only while painting, never across network calls.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/render"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrEmptyInput is returned when a search is submitted without a city.
	ErrEmptyInput = errors.New("city is required")
	// ErrMissingID is returned when a delete is requested without an id.
	ErrMissingID = errors.New("history id is required")
	// ErrSuperseded is returned by a search whose result arrived after a
	// newer search had already been applied. Nothing was painted.
	ErrSuperseded = errors.New("search superseded by a newer one")
)

// HistoryRefreshFailedText replaces the history region when it cannot be read.
const HistoryRefreshFailedText = "Search history could not be refreshed."

// ForecastGateway fetches the raw series for a city.
type ForecastGateway interface {
	FetchForecast(ctx context.Context, city string) (weather.ForecastSeries, error)
}

// HistoryStore reads and deletes search history.
type HistoryStore interface {
	Load(ctx context.Context) ([]weather.HistoryEntry, error)
	RecordAndRefresh(ctx context.Context, city string) ([]weather.HistoryEntry, error)
	DeleteAndRefresh(ctx context.Context, id string) ([]weather.HistoryEntry, error)
}

// Controller owns the document and the command handlers that paint it.
type Controller struct {
	forecasts  ForecastGateway
	history    HistoryStore
	normalizer *weather.Normalizer
	opts       render.Options
	logger     *zap.SugaredLogger

	searchSeq  atomic.Uint64
	historySeq atomic.Uint64

	// mu guards doc and the applied sequence numbers.
	mu             sync.Mutex
	doc            *render.Document
	appliedSearch  uint64
	appliedHistory uint64
}

// New creates a Controller painting into doc.
func New(
	forecasts ForecastGateway,
	history HistoryStore,
	normalizer *weather.Normalizer,
	doc *render.Document,
	opts render.Options,
	logger *zap.SugaredLogger,
) *Controller {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Controller{
		forecasts:  forecasts,
		history:    history,
		normalizer: normalizer,
		opts:       opts,
		logger:     logger,
		doc:        doc,
	}
}

// Init loads and paints the history. No city is searched.
func (c *Controller) Init(ctx context.Context) error {
	return c.refreshHistory(ctx, c.history.Load)
}

// RefreshHistory re-reads and repaints the history.
func (c *Controller) RefreshHistory(ctx context.Context) error {
	return c.refreshHistory(ctx, c.history.Load)
}

// SetSearchInput replaces the text in the search input.
func (c *Controller) SetSearchInput(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.SetInputValue(value)
}

// OnSearchSubmitted searches for the city currently in the search input.
// The input is cleared before the forecast is requested.
func (c *Controller) OnSearchSubmitted(ctx context.Context) error {
	c.mu.Lock()
	city := c.takeInputLocked()
	c.mu.Unlock()

	if city == "" {
		return ErrEmptyInput
	}
	return c.search(ctx, city)
}

// SubmitSearch types value into the search input and submits it in one step,
// so concurrent submissions cannot read each other's input.
func (c *Controller) SubmitSearch(ctx context.Context, value string) error {
	c.mu.Lock()
	c.doc.SetInputValue(value)
	city := c.takeInputLocked()
	c.mu.Unlock()

	if city == "" {
		return ErrEmptyInput
	}
	return c.search(ctx, city)
}

// OnHistorySelect searches again for a stored city. The search input is left
// untouched.
func (c *Controller) OnHistorySelect(ctx context.Context, entry weather.HistoryEntry) error {
	city := strings.TrimSpace(entry.Name)
	if city == "" {
		return ErrEmptyInput
	}
	return c.search(ctx, city)
}

// OnHistoryDelete deletes an entry and repaints the history only.
func (c *Controller) OnHistoryDelete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return c.refreshHistory(ctx, func(ctx context.Context) ([]weather.HistoryEntry, error) {
		return c.history.DeleteAndRefresh(ctx, id)
	})
}

// Render writes the current document to w.
func (c *Controller) Render(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Render(w)
}

func (c *Controller) takeInputLocked() string {
	city := strings.TrimSpace(c.doc.InputValue())
	c.doc.SetInputValue("")
	return city
}

func (c *Controller) search(ctx context.Context, city string) error {
	seq := c.searchSeq.Add(1)

	var result weather.Normalized
	series, err := c.forecasts.FetchForecast(ctx, city)
	if err == nil {
		result, err = c.normalizer.Normalize(series)
	}

	c.mu.Lock()
	if seq < c.appliedSearch {
		c.mu.Unlock()
		metrics.Searches.WithLabelValues(metrics.SearchSuperseded).Inc()
		c.logger.Infow("search result discarded", "city", city, "seq", seq, "error", err)
		return ErrSuperseded
	}
	c.appliedSearch = seq

	if err != nil {
		render.PaintError(c.doc.Today, searchFailureText(city, err))
		render.Clear(c.doc.Forecast)
		c.mu.Unlock()

		metrics.Searches.WithLabelValues(metrics.SearchFailed).Inc()
		c.logger.Warnw("search failed", "city", city, "seq", seq, "error", err)
		return fmt.Errorf("search %q: %w", city, err)
	}

	render.PaintCurrent(c.doc.Today, result.Current, c.opts)
	render.PaintForecast(c.doc.Forecast, result.Forecast, c.opts)
	c.mu.Unlock()

	metrics.Searches.WithLabelValues(metrics.SearchApplied).Inc()
	c.logger.Infow("search applied", "city", city, "seq", seq, "forecast_days", len(result.Forecast))

	// The search itself succeeded; a failed refresh is shown in the history
	// region only.
	_ = c.refreshHistory(ctx, func(ctx context.Context) ([]weather.HistoryEntry, error) {
		return c.history.RecordAndRefresh(ctx, city)
	})
	return nil
}

func (c *Controller) refreshHistory(ctx context.Context, fetch func(context.Context) ([]weather.HistoryEntry, error)) error {
	seq := c.historySeq.Add(1)
	entries, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.appliedHistory {
		c.logger.Debugw("stale history discarded", "seq", seq)
		return err
	}
	c.appliedHistory = seq

	if err != nil {
		render.PaintError(c.doc.History, HistoryRefreshFailedText)
		c.logger.Warnw("history refresh failed", "seq", seq, "error", err)
		return err
	}
	render.PaintHistory(c.doc.History, entries, c.opts)
	return nil
}

func searchFailureText(city string, err error) string {
	var ne *weather.NetworkError
	switch {
	case errors.Is(err, weather.ErrEmptySeries):
		return fmt.Sprintf("No weather data found for %s.", city)
	case errors.As(err, &ne) && ne.Status == http.StatusNotFound:
		return fmt.Sprintf("City %q was not found.", city)
	case weather.IsParse(err):
		return "The weather service sent an unexpected response. Please try again."
	default:
		return "Could not reach the weather service. Please try again."
	}
}
