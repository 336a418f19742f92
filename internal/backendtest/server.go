// Package backendtest provides an in-memory weather proxy for tests.
// It speaks the same routes as the real proxy: a forecast query that records
// the city in the search history, a history listing, and deletes by id.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/gateway"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Server is a concurrency-safe fake weather proxy.
type Server struct {
	mu sync.RWMutex

	// key: normalized city name
	forecasts map[string][]weather.ForecastSample
	gates     map[string]*Gate

	history []weather.HistoryEntry
	nextID  int

	failDeletes bool
	failList    bool

	srv *httptest.Server
}

// New starts a Server and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		forecasts: make(map[string][]weather.ForecastSample),
		gates:     make(map[string]*Gate),
		nextID:    1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/weather/{$}", s.handleForecast)
	mux.HandleFunc("GET /api/weather/history", s.handleList)
	mux.HandleFunc("DELETE /api/weather/history/{id}", s.handleDelete)

	s.srv = httptest.NewServer(mux)
	t.Cleanup(func() {
		s.mu.RLock()
		for _, g := range s.gates {
			g.Release()
		}
		s.mu.RUnlock()
		s.srv.Close()
	})
	return s
}

// URL is the base URL of the fake proxy.
func (s *Server) URL() string { return s.srv.URL }

// SetForecast registers the series returned for city. Lookups ignore case
// and surrounding spaces; unknown cities answer 404.
func (s *Server) SetForecast(city string, samples []weather.ForecastSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[key(city)] = samples
}

// SetHistory replaces the stored history. Ids are kept as given.
func (s *Server) SetHistory(entries []weather.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]weather.HistoryEntry(nil), entries...)
	for _, e := range entries {
		if n, err := strconv.Atoi(e.ID); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}
}

// Entries returns a copy of the stored history, oldest first.
func (s *Server) Entries() []weather.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]weather.HistoryEntry{}, s.history...)
}

// FailDeletes makes every delete answer 500 while on is true.
func (s *Server) FailDeletes(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDeletes = on
}

// FailList makes the history listing answer 503 while on is true.
func (s *Server) FailList(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = on
}

// Gate holds forecast responses for one city until released.
type Gate struct {
	arrived chan struct{}
	release chan struct{}

	arriveOnce  sync.Once
	releaseOnce sync.Once
}

// Arrived is closed once a request for the gated city reaches the server.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// Release lets held and future requests for the city through.
func (g *Gate) Release() {
	g.releaseOnce.Do(func() { close(g.release) })
}

// Block gates forecast responses for city. The search is recorded in the
// history only once the gate is released.
func (s *Server) Block(city string) *Gate {
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}

	s.mu.Lock()
	s.gates[key(city)] = g
	s.mu.Unlock()
	return g
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req gateway.ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.City) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "city is required"})
		return
	}

	s.mu.RLock()
	gate := s.gates[key(req.City)]
	s.mu.RUnlock()
	if gate != nil {
		gate.arriveOnce.Do(func() { close(gate.arrived) })
		select {
		case <-gate.release:
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	samples, ok := s.forecasts[key(req.City)]
	if ok {
		s.record(req.City)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"cod": "404", "message": "city not found"})
		return
	}

	resp := gateway.ForecastResponse{List: make([]gateway.SamplePayload, len(samples))}
	for i, sample := range samples {
		resp.List[i] = gateway.PayloadFromSample(sample)
	}
	writeJSON(w, http.StatusOK, resp)
}

// record appends city to the history unless an entry with the same name,
// ignoring case, already exists. Callers hold s.mu.
func (s *Server) record(city string) {
	for _, e := range s.history {
		if strings.EqualFold(e.Name, city) {
			return
		}
	}
	s.history = append(s.history, weather.HistoryEntry{ID: strconv.Itoa(s.nextID), Name: city})
	s.nextID++
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	fail := s.failList
	entries := append([]weather.HistoryEntry{}, s.history...)
	s.mu.RUnlock()

	if fail {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDeletes {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "delete failed"})
		return
	}

	for i, e := range s.history {
		if e.ID == id {
			s.history = append(s.history[:i], s.history[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"success": "removed city from search history"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "no entry with id " + id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func key(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Series builds n samples starting at start, step apart, with distinct
// temperatures so positions can be told apart.
func Series(n int, start time.Time, step time.Duration) []weather.ForecastSample {
	out := make([]weather.ForecastSample, n)
	for i := range out {
		out[i] = weather.ForecastSample{
			Timestamp:            start.Add(time.Duration(i) * step).Format(time.DateTime),
			Temperature:          50 + float64(i),
			Humidity:             40 + float64(i%50),
			WindSpeed:            5 + float64(i%10)/2,
			ConditionIcon:        "01d",
			ConditionDescription: "clear sky",
		}
	}
	return out
}
