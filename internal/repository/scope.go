package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// scheduleClause restricts a query to the schedule selected on ctx. The current plan is
// stored with a NULL schedule_id.
func scheduleClause(ctx context.Context, args []interface{}) (string, []interface{}) {
	scope := models.ScheduleScope(ctx)
	if scope == nil {
		return "schedule_id IS NULL", args
	}
	return fmt.Sprintf("schedule_id = $%d", len(args)+1), append(args, *scope)
}

// stampSchedule assigns rows created without an explicit schedule to the one on ctx.
func stampSchedule(ctx context.Context, current *string) *string {
	if current != nil {
		return current
	}
	return models.ScheduleScope(ctx)
}
