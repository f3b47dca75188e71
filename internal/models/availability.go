package models

import (
	"time"

	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// OwnerKind discriminates who an availability window belongs to.
type OwnerKind string

const (
	OwnerKindClient OwnerKind = "CLIENT"
	OwnerKindStaff  OwnerKind = "STAFF"
)

// Owner is a typed reference to either a client or a staff member.
type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

// ClientOwner references a client.
func ClientOwner(id string) Owner {
	return Owner{Kind: OwnerKindClient, ID: id}
}

// StaffOwner references a staff member.
func StaffOwner(id string) Owner {
	return Owner{Kind: OwnerKindStaff, ID: id}
}

// Availability is a recurring weekly window during which a person can be booked.
type Availability struct {
	ID         string              `db:"id" json:"id"`
	ScheduleID *string             `db:"schedule_id" json:"schedule_id,omitempty"`
	OwnerKind  OwnerKind           `db:"owner_kind" json:"owner_kind"`
	OwnerID    string              `db:"owner_id" json:"owner_id"`
	Day        int                 `db:"day" json:"day"`
	StartTime  timeofday.TimeOfDay `db:"start_time" json:"start_time"`
	EndTime    timeofday.TimeOfDay `db:"end_time" json:"end_time"`
	IsSub      bool                `db:"is_sub" json:"is_sub"`
	InClinic   bool                `db:"in_clinic" json:"in_clinic"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updated_at"`
}

// Owner returns the typed owner reference.
func (a Availability) Owner() Owner {
	return Owner{Kind: a.OwnerKind, ID: a.OwnerID}
}

// Range returns the window as a time range.
func (a Availability) Range() timeofday.Range {
	return timeofday.Range{Start: a.StartTime, End: a.EndTime}
}

// Hours returns the window length in hours.
func (a Availability) Hours() float64 {
	return a.Range().Hours()
}

// AvailabilityFilter narrows availability listings.
type AvailabilityFilter struct {
	OwnerKind OwnerKind
	OwnerID   string
	Day       *int
}
