package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/venue-directory/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body outgrew the capture limit.
func (cw *captureWriter) truncated() bool {
    return cw.limit > 0 && cw.size > cw.limit
}

// cacheKeyFrom builds a stable cache key honoring prefix/strategy.  The
// negotiated representation is always part of the key, so HTML and JSON
// renderings of one page never share an entry.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    route := c.Path()
    if route == "" {
        route = r.URL.Path
    }
    query := r.URL.RawQuery
    // Route patterns like /venues/:id must still key on the concrete id.
    target := r.URL.Path

    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = append(parts, "route", route, "path", target)
    case "method_route":
        parts = append(parts, "method", r.Method, "route", route, "path", target)
    case "method_route_query":
        parts = append(parts, "method", r.Method, "route", route, "path", target, "q", query)
    default: // "route_query"
        parts = append(parts, "route", route, "path", target, "q", query)
    }
    parts = append(parts, "accept", r.Header.Get(echo.HeaderAccept))

    tail := strings.Join(parts[1:], ":")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", parts[0], sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    hdr := make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, hdr, bs[8+hlen:], true
}

// NewRedisCache serves cached copies of successful read pages.  Headers and
// body are stored together so a hit is byte-identical to the original
// response.  Requests for which any bypass func returns true are neither
// served from nor stored in the cache; responses that set cookies are
// never stored.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, bypass ...func(echo.Context) bool) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            for _, skip := range bypass {
                if skip(c) {
                    return next(c)
                }
            }

            ctx := c.Request().Context()
            key := cacheKeyFrom(cfg, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        // Echo sets Content-Length itself
                        if strings.EqualFold(k, echo.HeaderContentLength) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            // Miss: capture
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated() || c.Response().Header().Get(echo.HeaderSetCookie) != "" {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
                    log.Ctx(ctx).Warn().Err(err).Msg("cache: store failed")
                }
            }
            return nil
        }
    }
}

// PurgeOnWrite drops every cached page after a request that is not a
// cached method completes without error.  Cached pages embed directory
// data, so any successful write can invalidate any of them.
func PurgeOnWrite(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            if cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return err
            }
            if err == nil && c.Response().Status < http.StatusBadRequest {
                ctx := context.WithoutCancel(c.Request().Context())
                if n, perr := purgePrefix(ctx, rdb, cfg.Prefix); perr != nil {
                    log.Ctx(ctx).Warn().Err(perr).Msg("cache: purge failed")
                } else {
                    log.Ctx(ctx).Debug().Int("keys", n).Msg("cache: purged")
                }
            }
            return err
        }
    }
}

// purgePrefix deletes all keys under prefix using SCAN so Redis is never
// blocked by a KEYS call.
func purgePrefix(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
    var (
        cursor  uint64
        deleted int
    )
    for {
        keys, next, err := rdb.Scan(ctx, cursor, prefix+":*", 200).Result()
        if err != nil {
            return deleted, err
        }
        if len(keys) > 0 {
            if err := rdb.Del(ctx, keys...).Err(); err != nil {
                return deleted, err
            }
            deleted += len(keys)
        }
        if next == 0 {
            return deleted, nil
        }
        cursor = next
    }
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
