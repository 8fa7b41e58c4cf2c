package service

import (
	"context"
	"strings"
	"time"

	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	backendPrimary = "primary"
	backendMatch   = "match"
	backendRating  = "rating"
)

// backendClient wraps one resty client per remote origin so every round
// trip is logged and measured the same way.
type backendClient struct {
	name    string
	rc      *resty.Client
	metrics *metrics.Metrics
}

func newBackendClient(name, baseURL string, timeout time.Duration, m *metrics.Metrics) *backendClient {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &backendClient{name: name, rc: rc, metrics: m}
}

func (c *backendClient) request(ctx context.Context) *resty.Request {
	return c.rc.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
}

// execute performs exactly one round trip. Transport failures come back as
// *NetworkError; HTTP error statuses are left for the caller to classify.
func (c *backendClient) execute(op, method, path string, r *resty.Request) (*resty.Response, error) {
	start := time.Now()
	resp, err := r.Execute(method, path)
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.ObserveBackendCall(c.name, op, 0, elapsed)
		logger.Warn().
			Str("backend", c.name).
			Str("op", op).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Err(err).
			Msg("backend request failed")
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.metrics.ObserveBackendCall(c.name, op, resp.StatusCode(), elapsed)
	logger.Debug().
		Str("backend", c.name).
		Str("op", op).
		Str("request_id", r.Header.Get("X-Request-ID")).
		Int("status", resp.StatusCode()).
		Dur("elapsed", elapsed).
		Msg("backend request")
	return resp, nil
}

func bodyText(resp *resty.Response) string {
	return strings.TrimSpace(resp.String())
}
