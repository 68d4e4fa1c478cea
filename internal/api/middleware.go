package api

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"StockScope/internal/logger"
	"StockScope/internal/metrics"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Recover turns panics into 500 responses.
func Recover(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered",
						logger.String("path", c.Request().URL.Path),
						logger.Any("panic", fmt.Sprint(r)),
						logger.String("stack", string(debug.Stack())),
					)
					err = InternalServerErrorResponse(c)
				}
			}()
			return next(c)
		}
	}
}

// RequestLogging logs every request except health checks and records its latency.
func RequestLogging(log *logger.Logger, rec *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			latency := time.Since(start)
			route := c.Path()
			rec.ObserveHTTP(req.Method, route, strconv.Itoa(status), latency)

			if route == "/api/health" || route == "/metrics" {
				return nil
			}
			log.Info("http request",
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.String("query", req.URL.RawQuery),
				logger.Int("status", status),
				logger.Duration("latency", latency),
				logger.String("ip", c.RealIP()),
			)
			return nil
		}
	}
}

// RateLimit applies a token bucket per client IP. Idle limiters expire after ttl.
func RateLimit(rps float64, burst int, ttl time.Duration) echo.MiddlewareFunc {
	limiters := gocache.New(ttl, 2*ttl)
	retryAfter := strconv.Itoa(int(max(1, float64(burst)/rps)))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			var limiter *rate.Limiter
			if v, found := limiters.Get(ip); found {
				limiter = v.(*rate.Limiter)
			} else {
				limiter = rate.NewLimiter(rate.Limit(rps), burst)
				if err := limiters.Add(ip, limiter, gocache.DefaultExpiration); err != nil {
					// another request created it first
					if v, found := limiters.Get(ip); found {
						limiter = v.(*rate.Limiter)
					}
				}
			}

			if !limiter.Allow() {
				c.Response().Header().Set("Retry-After", retryAfter)
				return AppErrorResponse(c, TooManyRequestsError("too many requests, please retry later"))
			}
			return next(c)
		}
	}
}

// noCache marks a response as uncacheable by browsers and proxies.
func noCache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return next(c)
	}
}
