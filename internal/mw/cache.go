package mw

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// KeyFunc derives the cache key for a request.
type KeyFunc func(c *gin.Context) string

// URIKey keys on the request URI alone, for data every caller sees the same.
func URIKey(c *gin.Context) string {
	return c.Request.URL.RequestURI()
}

type snapshot struct {
	status int
	header http.Header
	body   []byte
}

// capture tees the response body into buf.
type capture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *capture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capture) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache keeps successful GET responses in memory for ttl.
type ResponseCache struct {
	entries *cache.Cache
	ttl     time.Duration
	key     KeyFunc
}

// NewResponseCache creates a cache whose entries live for ttl.
func NewResponseCache(ttl time.Duration, key KeyFunc) *ResponseCache {
	return &ResponseCache{
		entries: cache.New(ttl, 2*ttl),
		ttl:     ttl,
		key:     key,
	}
}

// Handler serves hits from memory and records 2xx misses. Responses carry an
// X-Cache header of HIT or MISS. A request sent with Cache-Control: no-cache
// skips the lookup but still refreshes the entry.
func (rc *ResponseCache) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := rc.key(c)
		if !strings.Contains(c.GetHeader("Cache-Control"), "no-cache") {
			if v, ok := rc.entries.Get(key); ok {
				rc.replay(c, v.(snapshot))
				return
			}
		}

		c.Header("X-Cache", "MISS")
		w := &capture{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status < 200 || status >= 300 {
			return
		}
		header := w.Header().Clone()
		header.Del("X-Cache")
		rc.entries.Set(key, snapshot{status: status, header: header, body: w.buf.Bytes()}, rc.ttl)
	}
}

func (rc *ResponseCache) replay(c *gin.Context, s snapshot) {
	dst := c.Writer.Header()
	for k, v := range s.header {
		dst[k] = v
	}
	dst.Set("X-Cache", "HIT")
	c.Writer.WriteHeader(s.status)
	_, _ = c.Writer.Write(s.body)
	c.Abort()
}
