package models

import (
	"time"

	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// Appointment is a committed weekly booking of a client with a staff member.
type Appointment struct {
	ID                    string              `db:"id" json:"id"`
	ScheduleID            *string             `db:"schedule_id" json:"schedule_id,omitempty"`
	ClientID              string              `db:"client_id" json:"client_id"`
	StaffID               string              `db:"staff_id" json:"staff_id"`
	Day                   int                 `db:"day" json:"day"`
	StartTime             timeofday.TimeOfDay `db:"start_time" json:"start_time"`
	EndTime               timeofday.TimeOfDay `db:"end_time" json:"end_time"`
	InClinic              bool                `db:"in_clinic" json:"in_clinic"`
	IsPreschoolOrAdaptive bool                `db:"is_preschool_or_adaptive" json:"is_preschool_or_adaptive"`
	Notes                 string              `db:"notes" json:"notes"`
	CreatedAt             time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time           `db:"updated_at" json:"updated_at"`
}

// Range returns the booked time range.
func (a Appointment) Range() timeofday.Range {
	return timeofday.Range{Start: a.StartTime, End: a.EndTime}
}

// Hours returns the unrounded duration.
func (a Appointment) Hours() float64 {
	return a.Range().Hours()
}

// Involves reports whether the owner is the client or the staff member of the appointment.
func (a Appointment) Involves(owner Owner) bool {
	switch owner.Kind {
	case OwnerKindClient:
		return a.ClientID == owner.ID
	case OwnerKindStaff:
		return a.StaffID == owner.ID
	}
	return false
}

// AppointmentFilter describes query params for listing appointments.
type AppointmentFilter struct {
	ClientID string
	StaffID  string
	Day      *int
	Page     int
	PageSize int
}
