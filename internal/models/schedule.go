package models

import (
	"context"
	"time"
)

// Schedule is a named draft of the weekly plan. Rows without a schedule belong to the
// current plan.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type scheduleKey struct{}

// WithSchedule scopes ctx to a draft schedule. An empty id selects the current plan.
func WithSchedule(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, scheduleKey{}, id)
}

// ScheduleScope returns the draft schedule selected on ctx, or nil for the current plan.
func ScheduleScope(ctx context.Context) *string {
	id, ok := ctx.Value(scheduleKey{}).(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}

// ScheduleLabel names the scope for cache keys and logs.
func ScheduleLabel(ctx context.Context) string {
	if id := ScheduleScope(ctx); id != nil {
		return *id
	}
	return "current"
}
