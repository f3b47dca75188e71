package models

import (
	"time"

	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// TherapyType names the discipline of a client-only therapy session.
type TherapyType string

const (
	TherapyOccupational TherapyType = "ot"
	TherapySpeech       TherapyType = "st"
	TherapyMentalHealth TherapyType = "mh"
)

// Label returns the display name of the therapy type.
func (t TherapyType) Label() string {
	switch t {
	case TherapyOccupational:
		return "Occupational Therapy"
	case TherapySpeech:
		return "Speech Therapy"
	case TherapyMentalHealth:
		return "Mental Health"
	}
	return "Unknown"
}

// TherapyAppointment is a weekly outside therapy session of a client. It involves no staff
// member and is not part of matching.
type TherapyAppointment struct {
	ID          string              `db:"id" json:"id"`
	ScheduleID  *string             `db:"schedule_id" json:"schedule_id,omitempty"`
	ClientID    string              `db:"client_id" json:"client_id"`
	TherapyType TherapyType         `db:"therapy_type" json:"therapy_type"`
	Day         int                 `db:"day" json:"day"`
	StartTime   timeofday.TimeOfDay `db:"start_time" json:"start_time"`
	EndTime     timeofday.TimeOfDay `db:"end_time" json:"end_time"`
	Notes       string              `db:"notes" json:"notes"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

// Range returns the session's time range.
func (t TherapyAppointment) Range() timeofday.Range {
	return timeofday.Range{Start: t.StartTime, End: t.EndTime}
}

// TherapyAppointmentFilter describes query params for listing therapy sessions.
type TherapyAppointmentFilter struct {
	ClientID    string
	TherapyType TherapyType
	Day         *int
}
