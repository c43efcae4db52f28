package application

import (
	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/api"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/gateway"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/errors"
	"golang.org/x/time/rate"
)

func makeRateLimitMiddleware(limit float64, burst int) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	if burst < 1 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				apiErr := api.CommitError(errors.Newf("Rate limit of %.2f req/s exhausted", limit),
					stemerrors.RateLimitedCode,
					"Too many separation requests, please try again later")
				return gateway.ErrorResponse(c, apiErr)
			}

			return next(c)
		}
	}
}
