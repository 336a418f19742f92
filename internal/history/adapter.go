// Package history mediates reads and deletes of the search history kept by
// the weather proxy. Entries are created by the proxy as a side effect of a
// forecast query, so there is no add operation here.
package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Gateway is the subset of the proxy client the adapter needs.
type Gateway interface {
	ListHistory(ctx context.Context) ([]weather.HistoryEntry, error)
	DeleteHistoryEntry(ctx context.Context, id string) error
}

// Adapter reads and deletes history entries through a Gateway.
type Adapter struct {
	gw     Gateway
	logger *zap.SugaredLogger
}

// NewAdapter creates a new Adapter.
func NewAdapter(gw Gateway, logger *zap.SugaredLogger) *Adapter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Adapter{gw: gw, logger: logger}
}

// Load returns the history in server order for the initial paint.
func (a *Adapter) Load(ctx context.Context) ([]weather.HistoryEntry, error) {
	entries, err := a.gw.ListHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// RecordAndRefresh returns the history after a successful search for city.
// The proxy has already recorded the search; this only re-reads the list.
func (a *Adapter) RecordAndRefresh(ctx context.Context, city string) ([]weather.HistoryEntry, error) {
	entries, err := a.gw.ListHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh history after %q: %w", city, err)
	}
	return entries, nil
}

// DeleteAndRefresh deletes the entry with id and re-reads the list whatever
// the delete outcome. A failed delete is logged and counted; only a failed
// re-read is returned.
func (a *Adapter) DeleteAndRefresh(ctx context.Context, id string) ([]weather.HistoryEntry, error) {
	if err := a.gw.DeleteHistoryEntry(ctx, id); err != nil {
		metrics.HistoryDeleteFailures.Inc()
		a.logger.Warnw("history delete failed; refreshing anyway", "id", id, "error", err)
	}

	entries, err := a.gw.ListHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh history after delete %q: %w", id, err)
	}
	return entries, nil
}
