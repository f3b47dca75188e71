// Package matching holds the pure scheduling rules: who can be booked with whom, and
// what is wrong with a proposed booking. Callers load a Snapshot from storage and the
// engine never touches I/O.
package matching

import (
	"sort"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// DefaultLanguageLabel names the secondary language when none is configured.
const DefaultLanguageLabel = "Spanish"

// Options tunes rendering of warnings.
type Options struct {
	LanguageLabel string
}

// Snapshot is the data the engine reasons about. Staff must include every candidate
// and, when editing, the staff member currently on the appointment. Availabilities and
// Appointments must cover every person in Staff plus the client being scheduled.
type Snapshot struct {
	Staff          []models.Staff
	Availabilities []models.Availability
	Appointments   []models.Appointment
	Blocks         []models.Block
}

// Engine evaluates eligibility and warnings over a Snapshot.
type Engine struct {
	staff        []models.Staff
	staffByID    map[string]models.Staff
	availability *AvailabilityIndex
	bookings     *BookingIndex
	blocks       []models.Block
	opts         Options
}

// New builds an engine. Staff is ordered by last name, first name then id so results are
// deterministic regardless of load order.
func New(snapshot Snapshot, opts Options) *Engine {
	if opts.LanguageLabel == "" {
		opts.LanguageLabel = DefaultLanguageLabel
	}

	staffByID := make(map[string]models.Staff, len(snapshot.Staff))
	staff := make([]models.Staff, 0, len(snapshot.Staff))
	for _, member := range snapshot.Staff {
		if _, ok := staffByID[member.ID]; ok {
			continue
		}
		staffByID[member.ID] = member
		staff = append(staff, member)
	}
	sort.SliceStable(staff, func(i, j int) bool {
		if staff[i].LastName != staff[j].LastName {
			return staff[i].LastName < staff[j].LastName
		}
		if staff[i].FirstName != staff[j].FirstName {
			return staff[i].FirstName < staff[j].FirstName
		}
		return staff[i].ID < staff[j].ID
	})

	blocks := append([]models.Block(nil), snapshot.Blocks...)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].StartTime < blocks[j].StartTime
	})

	return &Engine{
		staff:        staff,
		staffByID:    staffByID,
		availability: NewAvailabilityIndex(snapshot.Availabilities),
		bookings:     NewBookingIndex(snapshot.Appointments),
		blocks:       blocks,
		opts:         opts,
	}
}

// Availability exposes the availability index.
func (e *Engine) Availability() *AvailabilityIndex {
	return e.availability
}

// Bookings exposes the booking index.
func (e *Engine) Bookings() *BookingIndex {
	return e.bookings
}

// MeetsRequirements checks the static skill and language requirements.
func MeetsRequirements(client models.Client, staff models.Staff) bool {
	if staff.Skill() < client.RequiredSkill() {
		return false
	}
	if client.RequiresLanguage && !staff.SpeaksLanguage {
		return false
	}
	return true
}

// AvailableStaff returns the staff who could take the client in the given slot. When
// pinned is set its own booking is ignored and its staff member is always included, so
// an edit form can keep the current assignment selected.
func (e *Engine) AvailableStaff(client models.Client, day int, r timeofday.Range, pinned *models.Appointment) []models.Staff {
	excludeID := ""
	if pinned != nil {
		excludeID = pinned.ID
	}

	result := make([]models.Staff, 0)
	seen := make(map[string]bool)
	for _, staff := range e.staff {
		if !e.canTake(client, staff, day, r, excludeID) {
			continue
		}
		seen[staff.ID] = true
		result = append(result, staff)
	}

	if pinned != nil && !seen[pinned.StaffID] {
		if incumbent, ok := e.staffByID[pinned.StaffID]; ok {
			result = append(result, incumbent)
		}
	}
	return result
}

// IsCandidate reports whether staff would be returned by AvailableStaff without pinning.
func (e *Engine) IsCandidate(client models.Client, staff models.Staff, day int, r timeofday.Range) bool {
	return e.canTake(client, staff, day, r, "")
}

func (e *Engine) canTake(client models.Client, staff models.Staff, day int, r timeofday.Range, excludeID string) bool {
	if !MeetsRequirements(client, staff) {
		return false
	}
	if e.bookings.IsMaxedOut(StaffQuota(staff)) {
		return false
	}
	if !e.availability.IsAvailable(staff.Owner(), day, r, false) {
		return false
	}
	return !e.bookings.IsBooked(staff.Owner(), day, r, excludeID)
}

// RecommendedSubstitutes lists staff who could cover appt: qualified, free in the slot
// through a regular or substitute window, and already familiar with the client.
func (e *Engine) RecommendedSubstitutes(client models.Client, appt models.Appointment, pastStaffIDs []string) []models.Staff {
	familiar := make(map[string]bool, len(pastStaffIDs))
	for _, id := range pastStaffIDs {
		familiar[id] = true
	}
	for _, other := range e.bookings.Appointments(client.Owner()) {
		if other.ID != appt.ID {
			familiar[other.StaffID] = true
		}
	}

	r := appt.Range()
	result := make([]models.Staff, 0)
	for _, staff := range e.staff {
		if staff.ID == appt.StaffID || !familiar[staff.ID] {
			continue
		}
		if !MeetsRequirements(client, staff) {
			continue
		}
		if !e.availability.IsAvailable(staff.Owner(), appt.Day, r, true) {
			continue
		}
		if e.bookings.IsBooked(staff.Owner(), appt.Day, r, appt.ID) {
			continue
		}
		result = append(result, staff)
	}
	return result
}

// RepeatableDays returns the other weekdays on which the same pairing and slot would be
// valid, in ascending order.
func (e *Engine) RepeatableDays(client models.Client, staff models.Staff, day int, r timeofday.Range) []int {
	days := make([]int, 0)
	for _, candidate := range timeofday.Weekdays() {
		if candidate == day {
			continue
		}
		if !e.availability.IsAvailable(client.Owner(), candidate, r, false) {
			continue
		}
		if !e.IsCandidate(client, staff, candidate, r) {
			continue
		}
		days = append(days, candidate)
	}
	return days
}
