package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHeader     = "X-Cache"
)

// Meta is the per request map rendered as the envelope's "meta" member.
type Meta map[string]interface{}

// ResponseMeta opens a Meta for the request and stamps processing_time_ms once the chain returns.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		meta := Meta{}
		c.Set(responseMetaKey, meta)
		c.Next()
		if _, set := meta["processing_time_ms"]; !set {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetCacheHit records whether a summary came from cache and mirrors it in X-Cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFor(c)["cache_hit"] = hit
	state := "MISS"
	if hit {
		state = "HIT"
	}
	c.Header(cacheHeader, state)
}

// ExtractMeta returns the request's metadata, or nil outside ResponseMeta.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, _ := c.Value(responseMetaKey).(Meta)
	return meta
}

func metaFor(c *gin.Context) Meta {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := Meta{}
	c.Set(responseMetaKey, meta)
	return meta
}
