package middleware

import (
	"time"

	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Limit is a sliding-window budget for one route scope. Callers are keyed by
// scope and client IP, so scopes never share a budget.
type Limit struct {
	Scope      string
	Max        int
	Expiration time.Duration
}

var (
	GlobalLimit = Limit{Scope: "global", Max: 50, Expiration: time.Minute}
	MatchLimit  = Limit{Scope: "match", Max: 10, Expiration: time.Minute}
	UploadLimit = Limit{Scope: "resume_upload", Max: 5, Expiration: time.Minute}
)

func RateLimiter(l Limit, m *metrics.Metrics) fiber.Handler {
	if l.Max == 0 {
		l.Max = 50
	}
	if l.Expiration == 0 {
		l.Expiration = 1 * time.Minute
	}
	if l.Scope == "" {
		l.Scope = "global"
	}
	return limiter.New(limiter.Config{
		Max:        l.Max,
		Expiration: l.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return l.Scope + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			m.ObserveRateLimited(l.Scope)
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusTooManyRequests,
				Message: "Too many requests, please slow down",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
