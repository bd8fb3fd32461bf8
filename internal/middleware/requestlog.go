package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/venue-directory/internal/queue"
)

// RequestLogger assigns every request an id, exposes it in X-Request-ID and
// attaches a logger carrying it to the request context.  A completion line
// is written once the handler chain returns.  An incoming X-Request-ID is
// reused when it parses as a UUID.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            id := req.Header.Get(echo.HeaderXRequestID)
            if _, err := uuid.Parse(id); err != nil {
                id = uuid.NewString()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, id)

            logger := base.With().Str("request_id", id).Logger()
            ctx := logger.WithContext(req.Context())
            ctx = queue.ContextWithRequestID(ctx, id)
            c.SetRequest(req.WithContext(ctx))

            start := time.Now()
            err := next(c)
            if err != nil {
                // Let echo render the error now so the logged status is final.
                c.Error(err)
            }

            res := c.Response()
            ev := logger.Info()
            if res.Status >= 500 {
                ev = logger.Error().Err(err)
            }
            ev.Str("method", req.Method).
                Str("path", req.URL.Path).
                Str("route", c.Path()).
                Int("status", res.Status).
                Int64("bytes", res.Size).
                Dur("duration", time.Since(start)).
                Str("remote_ip", c.RealIP()).
                Msg("request")
            return nil
        }
    }
}
