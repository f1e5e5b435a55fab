package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const (
	burstMultiplier  = 2
	rateLimitCleanup = 3 * time.Minute
)

// Handler serves GET token requests: identity is required, room and region
// are optional. Error responses carry an `{error}` body with a status that
// distinguishes caller mistakes (400) from server-side configuration or
// signing faults (500).
func (i *Issuer) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		grant, err := i.Issue(
			c.QueryParam("identity"),
			c.QueryParam("room"),
			c.QueryParam("region"),
		)
		switch {
		case errors.Is(err, ErrMissingIdentity):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "identity is required"})
		case errors.Is(err, ErrMissingCredentials):
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "server credentials are not configured"})
		case err != nil:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate token"})
		}
		return c.JSON(http.StatusOK, grant)
	}
}

// NewServer wires the token endpoint onto an echo instance with request IDs
// and per-IP rate limiting. The caller owns startup and shutdown.
func NewServer(issuer *Issuer, requestsPerSecond int) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(rateLimit(requestsPerSecond))

	e.GET("/api/token", issuer.Handler())
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	return e
}

// rateLimit limits requests per client IP. A zero or negative limit
// disables rate limiting.
func rateLimit(requestsPerSecond int) echo.MiddlewareFunc {
	if requestsPerSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	config := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(requestsPerSecond),
				Burst:     requestsPerSecond * burstMultiplier,
				ExpiresIn: rateLimitCleanup,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		},
	}

	return middleware.RateLimiterWithConfig(config)
}
