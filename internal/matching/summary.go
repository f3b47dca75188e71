package matching

import (
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// Summarize computes the hour totals of a person. Values are rounded to two decimals.
func Summarize(q Quota, displayName string, availability *AvailabilityIndex, bookings *BookingIndex) models.PersonSummary {
	byDay := bookings.TotalHoursByDay(q.Owner)
	for day := range byDay {
		byDay[day] = timeofday.Round2(byDay[day])
	}
	return models.PersonSummary{
		Owner:               q.Owner,
		DisplayName:         displayName,
		HourQuota:           q.Hours,
		TotalHoursAvailable: timeofday.Round2(availability.TotalHours(q.Owner)),
		TotalHours:          timeofday.Round2(bookings.TotalHours(q.Owner)),
		TotalHoursByDay:     byDay,
		IsMaxedOnSessions:   bookings.IsMaxedOut(q),
	}
}
