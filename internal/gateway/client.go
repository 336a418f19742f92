// Package gateway is the client for the weather proxy: one forecast query and
// the three history operations. Every call goes through a circuit breaker and
// an optional rate limiter; retries are off unless configured.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	forecastPath = "/api/weather/"
	historyPath  = "/api/weather/history"

	opFetchForecast = "fetch forecast"
	opListHistory   = "list history"
	opDeleteHistory = "delete history entry"

	// maxBodyBytes caps how much of a response is read; a 5-day/3-hour
	// forecast is well under this.
	maxBodyBytes = 4 << 20
)

// Options tunes retries and outbound throttling.
type Options struct {
	MaxRetries       int
	RetryInterval    time.Duration
	MaxRetryInterval time.Duration
	RateLimit        float64 // requests per second, 0 disables
	RateBurst        int
}

// Client talks to the weather proxy.
type Client struct {
	baseURL string
	maxBody int64
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

// NewClient creates a Client for the proxy at baseURL.
func NewClient(client *http.Client, baseURL string, opts Options, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-proxy",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		// A 4xx is the proxy answering; only outages count toward tripping.
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		maxBody: maxBodyBytes,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      opts.MaxRetries,
				InitialInterval: opts.RetryInterval,
				MaxInterval:     opts.MaxRetryInterval,
			},
			Limiter: limiter,
		},
		circuit: cb,
		logger:  logger,
	}
}

// FetchForecast posts city to the forecast endpoint and decodes the series.
// The series may be empty; deciding what that means is left to the caller.
func (c *Client) FetchForecast(ctx context.Context, city string) (weather.ForecastSeries, error) {
	payload, err := json.Marshal(ForecastRequest{City: city})
	if err != nil {
		return nil, fmt.Errorf("encode forecast request: %w", err)
	}

	body, err := c.call(ctx, opFetchForecast, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+forecastPath, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	series, err := decodeForecast(body)
	if err != nil {
		return nil, c.parseFailure(opFetchForecast, err)
	}

	c.succeeded(opFetchForecast)
	c.logger.Debugw("forecast received", "city", city, "samples", len(series))
	return series, nil
}

// ListHistory returns the full search history in server order.
// An empty history is a non-nil, zero-length slice.
func (c *Client) ListHistory(ctx context.Context) ([]weather.HistoryEntry, error) {
	body, err := c.call(ctx, opListHistory, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.baseURL+historyPath, nil)
	})
	if err != nil {
		return nil, err
	}

	entries, err := decodeHistory(body)
	if err != nil {
		return nil, c.parseFailure(opListHistory, err)
	}

	c.succeeded(opListHistory)
	return entries, nil
}

// DeleteHistoryEntry asks the proxy to forget the entry with the given id.
func (c *Client) DeleteHistoryEntry(ctx context.Context, id string) error {
	_, err := c.call(ctx, opDeleteHistory, func() (*http.Request, error) {
		return http.NewRequest(http.MethodDelete, c.baseURL+historyPath+"/"+url.PathEscape(id), nil)
	})
	if err != nil {
		return err
	}

	c.succeeded(opDeleteHistory)
	return nil
}

// call performs one logical operation and returns the response body.
// Any failure before a body is read is reported as a *weather.NetworkError.
func (c *Client) call(ctx context.Context, op string, build func() (*http.Request, error)) ([]byte, error) {
	requestID := uuid.NewString()

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, func() (*http.Request, error) {
		req, err := build()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		return req, nil
	})
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(metricOp(op), metrics.OutcomeNetworkError).Inc()
		c.logger.Warnw("weather proxy call failed", "op", op, "request_id", requestID, "error", err)
		return nil, &weather.NetworkError{Op: op, Status: statusOf(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(metricOp(op), metrics.OutcomeNetworkError).Inc()
		return nil, &weather.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, c.parseFailure(op, fmt.Errorf("%w: exceeds %d bytes", errBodyTooLarge, c.maxBody))
	}
	return body, nil
}

func (c *Client) parseFailure(op string, err error) error {
	metrics.GatewayRequests.WithLabelValues(metricOp(op), metrics.OutcomeParseError).Inc()
	c.logger.Warnw("weather proxy response rejected", "op", op, "error", err)
	return &weather.ParseError{Op: op, Err: err}
}

func (c *Client) succeeded(op string) {
	metrics.GatewayRequests.WithLabelValues(metricOp(op), metrics.OutcomeOK).Inc()
}

func metricOp(op string) string {
	return strings.ReplaceAll(op, " ", "_")
}
