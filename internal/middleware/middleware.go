package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewUpgradeMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware(ctx *fiber.Ctx) error
	GetRequestID(ctx *fiber.Ctx) string
}

type Options struct {
	RequestsPerSecond float64
	Burst             int
}

type middleware struct {
	rateLimiter *rateLimiter
	logging     *loggingMiddleware
	requestID   fiber.Handler
	log         *logrus.Logger
}

const (
	defaultRequestsPerSecond = 50
	defaultBurst             = 100
)

// New builds the HTTP middleware. Zero options fall back to 50 requests per
// second with a burst of 100 per client IP.
func New(logger *logrus.Logger, opts Options) Middleware {
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}

	return &middleware{
		rateLimiter: newRateLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		logging:     newLoggingMiddleware(logger),
		requestID:   NewRequestIDMiddleware(),
		log:         logger,
	}
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestID
}
