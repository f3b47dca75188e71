package models

import (
	"time"

	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// Block is a named canonical time-of-day range such as "morning".
type Block struct {
	ID        string              `db:"id" json:"id"`
	Label     string              `db:"label" json:"label"`
	Color     string              `db:"color" json:"color"`
	StartTime timeofday.TimeOfDay `db:"start_time" json:"start_time"`
	EndTime   timeofday.TimeOfDay `db:"end_time" json:"end_time"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt time.Time           `db:"updated_at" json:"updated_at"`
}

// Range returns the block as a time range.
func (b Block) Range() timeofday.Range {
	return timeofday.Range{Start: b.StartTime, End: b.EndTime}
}
