package matching

import (
	"fmt"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// splitBlockCount is the number of canonical blocks the split schedule check expects.
const splitBlockCount = 3

// Warnings lists soft constraint violations for booking client with staff on day during r.
// existing is the appointment being edited, if any; its own time is not counted against
// either party. The result is empty when the booking is fully conformant.
func (e *Engine) Warnings(client models.Client, staff models.Staff, day int, r timeofday.Range, existing *models.Appointment) []string {
	warnings := make([]string, 0)
	clientName := client.DisplayName()
	staffName := staff.DisplayName()
	dayName := timeofday.DayName(day)
	excludeID := ""
	if existing != nil {
		excludeID = existing.ID
	}

	if client.IsManuallyMaxedOut {
		warnings = append(warnings, fmt.Sprintf("%s is manually marked as maxed out on sessions", clientName))
	}
	if staff.IsManuallyMaxedOut {
		warnings = append(warnings, fmt.Sprintf("%s is manually marked as maxed out on sessions", staffName))
	}

	if excess, ok := e.weeklyExcess(ClientQuota(client), r, existing); ok {
		warnings = append(warnings, fmt.Sprintf("%s would exceed their prescribed hours by %.2f hours", clientName, excess))
	}
	if excess, ok := e.weeklyExcess(StaffQuota(staff), r, existing); ok {
		warnings = append(warnings, fmt.Sprintf("%s would exceed their requested hours by %.2f hours", staffName, excess))
	}
	if excess, ok := e.dailyExcess(staff, day, r, existing); ok {
		warnings = append(warnings, fmt.Sprintf("%s would exceed their maximum hours on %s by %.2f hours", staffName, dayName, excess))
	}

	if staff.Skill() < client.RequiredSkill() {
		warnings = append(warnings, fmt.Sprintf("%s does not meet %s's skill level requirement", staffName, clientName))
	}
	if client.RequiresLanguage && !staff.SpeaksLanguage {
		warnings = append(warnings, fmt.Sprintf("%s does not speak %s", staffName, e.opts.LanguageLabel))
	}

	if !e.availability.IsAvailable(client.Owner(), day, r, false) {
		warnings = append(warnings, fmt.Sprintf("%s is not available on %s from %s", clientName, dayName, r.Display()))
	}
	if !e.availability.IsAvailable(staff.Owner(), day, r, false) {
		warnings = append(warnings, fmt.Sprintf("%s is not available on %s from %s", staffName, dayName, r.Display()))
	}

	if e.bookings.IsBooked(client.Owner(), day, r, excludeID) {
		warnings = append(warnings, fmt.Sprintf("%s is already booked on %s from %s", clientName, dayName, r.Display()))
	}
	if e.bookings.IsBooked(staff.Owner(), day, r, excludeID) {
		warnings = append(warnings, fmt.Sprintf("%s is already booked on %s from %s", staffName, dayName, r.Display()))
	}

	if e.createsSplitBlock(client.Owner(), day, r, excludeID) {
		warnings = append(warnings, fmt.Sprintf("This creates a split schedule for %s on %s", clientName, dayName))
	}
	if e.createsSplitBlock(staff.Owner(), day, r, excludeID) {
		warnings = append(warnings, fmt.Sprintf("This creates a split schedule for %s on %s", staffName, dayName))
	}

	return warnings
}

// weeklyExcess returns how far the projected weekly total would go past the quota.
func (e *Engine) weeklyExcess(q Quota, r timeofday.Range, existing *models.Appointment) (float64, bool) {
	if !q.Enabled() {
		return 0, false
	}
	projected := e.bookings.committedSeconds(q.Owner) + r.Seconds()
	if existing != nil && existing.Involves(q.Owner) {
		projected -= existing.Range().Seconds()
	}
	excess := projected - q.Hours*3600
	if excess <= 0 {
		return 0, false
	}
	return secondsToHours(excess), true
}

// dailyExcess mirrors weeklyExcess against the staff member's per-day cap.
func (e *Engine) dailyExcess(staff models.Staff, day int, r timeofday.Range, existing *models.Appointment) (float64, bool) {
	if staff.MaxHoursPerDay <= 0 {
		return 0, false
	}
	owner := staff.Owner()
	projected := e.bookings.committedSecondsOnDay(owner, day) + r.Seconds()
	if existing != nil && existing.Involves(owner) && existing.Day == day {
		projected -= existing.Range().Seconds()
	}
	excess := projected - staff.MaxHoursPerDay*3600
	if excess <= 0 {
		return 0, false
	}
	return secondsToHours(excess), true
}

// createsSplitBlock reports whether booking r would leave owner with appointments in the
// first and last block of day but nothing in the middle one.
func (e *Engine) createsSplitBlock(owner models.Owner, day int, r timeofday.Range, excludeID string) bool {
	if len(e.blocks) != splitBlockCount {
		return false
	}
	first, middle, last := e.blocks[0].Range(), e.blocks[1].Range(), e.blocks[2].Range()
	booked := e.bookings.OnDay(owner, day, excludeID)

	hasWithin := func(block timeofday.Range) bool {
		for _, appt := range booked {
			if block.Contains(appt.Range()) {
				return true
			}
		}
		return false
	}

	switch {
	case first.Contains(r):
		return hasWithin(last) && !hasWithin(middle)
	case last.Contains(r):
		return hasWithin(first) && !hasWithin(middle)
	}
	return false
}
