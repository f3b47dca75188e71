package matching

import (
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// Quota describes the weekly cap of a person. Hours <= 0 disables the cap.
type Quota struct {
	Owner            models.Owner
	Hours            int
	ManuallyMaxedOut bool
}

// Enabled reports whether the hour cap applies.
func (q Quota) Enabled() bool {
	return q.Hours > 0
}

// ClientQuota derives the quota from prescribed hours.
func ClientQuota(c models.Client) Quota {
	return Quota{Owner: c.Owner(), Hours: c.PrescribedHours, ManuallyMaxedOut: c.IsManuallyMaxedOut}
}

// StaffQuota derives the quota from requested hours.
func StaffQuota(s models.Staff) Quota {
	return Quota{Owner: s.Owner(), Hours: s.RequestedHours, ManuallyMaxedOut: s.IsManuallyMaxedOut}
}

// BookingIndex groups appointments by the client and the staff member they involve.
// Totals are accumulated in whole seconds and only converted to hours on the way out.
type BookingIndex struct {
	byOwner map[models.Owner][]models.Appointment
}

// NewBookingIndex indexes each appointment under both of its parties.
func NewBookingIndex(items []models.Appointment) *BookingIndex {
	idx := &BookingIndex{byOwner: make(map[models.Owner][]models.Appointment)}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ID != "" {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
		}
		if item.ClientID != "" {
			owner := models.ClientOwner(item.ClientID)
			idx.byOwner[owner] = append(idx.byOwner[owner], item)
		}
		if item.StaffID != "" {
			owner := models.StaffOwner(item.StaffID)
			idx.byOwner[owner] = append(idx.byOwner[owner], item)
		}
	}
	return idx
}

// Appointments returns every appointment of owner.
func (b *BookingIndex) Appointments(owner models.Owner) []models.Appointment {
	return b.byOwner[owner]
}

// OnDay returns the owner's appointments on day, skipping excludeID.
func (b *BookingIndex) OnDay(owner models.Owner, day int, excludeID string) []models.Appointment {
	var result []models.Appointment
	for _, appt := range b.byOwner[owner] {
		if appt.Day != day || (excludeID != "" && appt.ID == excludeID) {
			continue
		}
		result = append(result, appt)
	}
	return result
}

// IsBooked reports whether owner has an appointment on day overlapping r, other than excludeID.
func (b *BookingIndex) IsBooked(owner models.Owner, day int, r timeofday.Range, excludeID string) bool {
	for _, appt := range b.OnDay(owner, day, excludeID) {
		if appt.Range().Overlaps(r) {
			return true
		}
	}
	return false
}

// TotalHours is the owner's committed weekly hours.
func (b *BookingIndex) TotalHours(owner models.Owner) float64 {
	return secondsToHours(b.committedSeconds(owner))
}

// TotalHoursByDay partitions committed hours per day index.
func (b *BookingIndex) TotalHoursByDay(owner models.Owner) [timeofday.DaysPerWeek]float64 {
	var seconds [timeofday.DaysPerWeek]int
	for _, appt := range b.byOwner[owner] {
		if timeofday.ValidDay(appt.Day) {
			seconds[appt.Day] += appt.Range().Seconds()
		}
	}
	var hours [timeofday.DaysPerWeek]float64
	for day, s := range seconds {
		hours[day] = secondsToHours(s)
	}
	return hours
}

// IsMaxedOut applies the manual override and then the hour cap.
func (b *BookingIndex) IsMaxedOut(q Quota) bool {
	if q.ManuallyMaxedOut {
		return true
	}
	if !q.Enabled() {
		return false
	}
	return b.committedSeconds(q.Owner) >= q.Hours*3600
}

func (b *BookingIndex) committedSeconds(owner models.Owner) int {
	var total int
	for _, appt := range b.byOwner[owner] {
		total += appt.Range().Seconds()
	}
	return total
}

func (b *BookingIndex) committedSecondsOnDay(owner models.Owner, day int) int {
	var total int
	for _, appt := range b.byOwner[owner] {
		if appt.Day == day {
			total += appt.Range().Seconds()
		}
	}
	return total
}

func secondsToHours(seconds int) float64 {
	return float64(seconds) / 3600
}
