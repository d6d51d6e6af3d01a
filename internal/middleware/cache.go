package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/train-reservation/internal/config"
)

// bodyRecorder tees the response body into a bounded buffer.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func cacheKey(cfg config.CacheConfig, r *http.Request) string {
	sum := sha1.Sum([]byte(r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// entries are [2 bytes len][content type][body]
func encodeEntry(contentType string, body []byte) []byte {
	out := make([]byte, 2+len(contentType)+len(body))
	binary.BigEndian.PutUint16(out, uint16(len(contentType)))
	copy(out[2:], contentType)
	copy(out[2+len(contentType):], body)
	return out
}

func decodeEntry(bs []byte) (contentType string, body []byte, ok bool) {
	if len(bs) < 2 {
		return "", nil, false
	}
	n := int(binary.BigEndian.Uint16(bs))
	if 2+n > len(bs) {
		return "", nil, false
	}
	return string(bs[2 : 2+n]), bs[2+n:], true
}

// NewRedisCache caches 200 responses of GET requests on cacheable catalog
// paths. It is a no-op without Redis.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet || !cfg.Cacheable(req.URL.Path) {
				return next(c)
			}
			key := cacheKey(cfg, req)
			if bs, err := rdb.Get(req.Context(), key).Bytes(); err == nil {
				if ct, body, ok := decodeEntry(bs); ok {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, ct, body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && !rec.overflow {
				ct := c.Response().Header().Get(echo.HeaderContentType)
				if err := rdb.Set(context.Background(), key, encodeEntry(ct, rec.buf.Bytes()), cfg.TTL).Err(); err != nil {
					c.Logger().Warnf("cache set %s: %v", key, err)
				}
			}
			return nil
		}
	}
}

// InvalidateCache drops every cached catalog response after a successful
// write so admins see their changes at once.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil || c.Request().Method == http.MethodGet || c.Response().Status >= 300 {
				return err
			}
			ctx := context.Background()
			iter := rdb.Scan(ctx, 0, cfg.Prefix+":*", 100).Iterator()
			for iter.Next(ctx) {
				rdb.Del(ctx, iter.Val())
			}
			if ierr := iter.Err(); ierr != nil {
				c.Logger().Warnf("cache invalidate: %v", ierr)
			}
			return err
		}
	}
}
