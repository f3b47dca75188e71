package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func serve(t *testing.T, inbound string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestMiddlewareKeepsInboundID(t *testing.T) {
	w, seen := serve(t, "front-door:42")
	assert.Equal(t, "front-door:42", seen)
	assert.Equal(t, "front-door:42", w.Header().Get(Header))
}

func TestMiddlewareReplacesUnsafeID(t *testing.T) {
	for _, inbound := range []string{"", "line\nbreak", strings.Repeat("a", maxLength+1)} {
		w, seen := serve(t, inbound)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, "inbound %q", inbound)
		assert.Equal(t, seen, w.Header().Get(Header))
	}
}
