package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type scheduleResolverStub struct {
	known map[string]bool
	calls int
}

func (s *scheduleResolverStub) Get(ctx context.Context, id string) (*models.Schedule, error) {
	s.calls++
	if !s.known[id] {
		return nil, appErrors.NotFound("schedule")
	}
	return &models.Schedule{ID: id, Name: "Draft"}, nil
}

func TestScheduleScope(t *testing.T) {
	resolver := &scheduleResolverStub{known: map[string]bool{"sch-1": true}}
	var scope *string
	var meta map[string]interface{}
	r := newEngine(ResponseMeta(), ScheduleScope(resolver), func(c *gin.Context) {
		scope = models.ScheduleScope(c.Request.Context())
		meta = ExtractMeta(c)
	})

	send := func(header string) *httptest.ResponseRecorder {
		scope, meta = nil, nil
		req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
		if header != "" {
			req.Header.Set(ScheduleHeader, header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, send("").Code)
	assert.Nil(t, scope)
	assert.Zero(t, resolver.calls)

	require.Equal(t, http.StatusOK, send("sch-1").Code)
	require.NotNil(t, scope)
	assert.Equal(t, "sch-1", *scope)
	assert.Equal(t, "sch-1", meta["schedule_id"])

	w := send("sch-404")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "schedule not found")
	assert.Nil(t, scope)
}
