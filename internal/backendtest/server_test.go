package backendtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func postCity(t *testing.T, s *Server, city string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"city": city})
	resp, err := http.Post(s.URL()+"/api/weather/", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestForecastRecordsHistoryOnce(t *testing.T) {
	s := New(t)
	s.SetForecast("Boise", Series(3, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), 3*time.Hour))

	assert.Equal(t, http.StatusOK, postCity(t, s, "Boise").StatusCode)
	assert.Equal(t, http.StatusOK, postCity(t, s, "boise").StatusCode)

	assert.Equal(t, []weather.HistoryEntry{{ID: "1", Name: "Boise"}}, s.Entries())
}

func TestUnknownCity(t *testing.T) {
	s := New(t)

	assert.Equal(t, http.StatusNotFound, postCity(t, s, "Atlantis").StatusCode)
	assert.Empty(t, s.Entries())
}

func TestSetHistoryContinuesIDs(t *testing.T) {
	s := New(t)
	s.SetHistory([]weather.HistoryEntry{{ID: "1", Name: "Reno"}, {ID: "2", Name: "Austin"}})
	s.SetForecast("Miami", Series(1, time.Now(), time.Hour))

	postCity(t, s, "Miami")

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "3", entries[2].ID)
}

func TestBlockHoldsUntilRelease(t *testing.T) {
	s := New(t)
	s.SetForecast("Nome", Series(2, time.Now(), time.Hour))
	gate := s.Block("Nome")

	done := make(chan int)
	go func() {
		body, _ := json.Marshal(map[string]string{"city": "Nome"})
		resp, err := http.Post(s.URL()+"/api/weather/", "application/json", bytes.NewReader(body))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	<-gate.Arrived()
	select {
	case <-done:
		t.Fatal("response sent before release")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Empty(t, s.Entries())

	gate.Release()
	assert.Equal(t, http.StatusOK, <-done)
	assert.Len(t, s.Entries(), 1)
}

func TestSeries(t *testing.T) {
	start := time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)

	got := Series(3, start, 3*time.Hour)

	require.Len(t, got, 3)
	assert.Equal(t, "2025-03-10 21:00:00", got[0].Timestamp)
	assert.Equal(t, "2025-03-11 03:00:00", got[2].Timestamp)
	assert.NotEqual(t, got[0].Temperature, got[1].Temperature)
}
