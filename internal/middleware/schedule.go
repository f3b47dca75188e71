package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// ScheduleHeader selects a draft schedule. Without it requests act on the current plan.
const ScheduleHeader = "X-Schedule-ID"

// ScheduleResolver loads a draft schedule by id.
type ScheduleResolver interface {
	Get(ctx context.Context, id string) (*models.Schedule, error)
}

// ScheduleScope binds the draft named by X-Schedule-ID to the request context. Unknown ids
// are rejected rather than silently served from the current plan.
func ScheduleScope(resolver ScheduleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(ScheduleHeader))
		if id == "" || resolver == nil {
			c.Next()
			return
		}
		schedule, err := resolver.Get(c.Request.Context(), id)
		if err != nil {
			abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(models.WithSchedule(c.Request.Context(), schedule.ID))
		metaFor(c)["schedule_id"] = schedule.ID
		c.Next()
	}
}
