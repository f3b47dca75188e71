package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

func conformantSnapshot(client models.Client, staff models.Staff) Snapshot {
	return Snapshot{
		Staff: []models.Staff{staff},
		Availabilities: []models.Availability{
			window(client.Owner(), timeofday.Monday, "09:00", "19:00"),
			window(staff.Owner(), timeofday.Monday, "09:00", "19:00"),
		},
		Blocks: canonicalBlocks(),
	}
}

func TestWarningsEmptyWhenConformant(t *testing.T) {
	client := testClient()
	staff := testStaff("staff-1", "Ben", "Hart", 2)
	engine := New(conformantSnapshot(client, staff), Options{})

	assert.Empty(t, engine.Warnings(client, staff, timeofday.Monday, rng("09:00", "12:00"), nil))
}

func TestWarningsOrderAndMessages(t *testing.T) {
	client := testClient()
	client.IsManuallyMaxedOut = true
	client.PrescribedHours = 2
	client.ReqSkillLevel = 3
	client.RequiresLanguage = true
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	staff.IsManuallyMaxedOut = true
	staff.RequestedHours = 1
	staff.MaxHoursPerDay = 2

	engine := New(Snapshot{
		Staff: []models.Staff{staff},
		Appointments: []models.Appointment{
			appointment("appt-1", client.ID, "staff-2", timeofday.Monday, "09:30", "10:30"),
			appointment("appt-2", "client-2", staff.ID, timeofday.Monday, "10:00", "11:00"),
		},
	}, Options{LanguageLabel: "Spanish"})

	warnings := engine.Warnings(client, staff, timeofday.Monday, rng("09:00", "11:00"), nil)
	assert.Equal(t, []string{
		"Ana Lopez is manually marked as maxed out on sessions",
		"Ben Hart is manually marked as maxed out on sessions",
		"Ana Lopez would exceed their prescribed hours by 1.00 hours",
		"Ben Hart would exceed their requested hours by 2.00 hours",
		"Ben Hart would exceed their maximum hours on Monday by 1.00 hours",
		"Ben Hart does not meet Ana Lopez's skill level requirement",
		"Ben Hart does not speak Spanish",
		"Ana Lopez is not available on Monday from 9:00 AM to 11:00 AM",
		"Ben Hart is not available on Monday from 9:00 AM to 11:00 AM",
		"Ana Lopez is already booked on Monday from 9:00 AM to 11:00 AM",
		"Ben Hart is already booked on Monday from 9:00 AM to 11:00 AM",
	}, warnings)
}

func TestWarningsUseConfiguredLanguageLabel(t *testing.T) {
	client := testClient()
	client.RequiresLanguage = true
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	engine := New(conformantSnapshot(client, staff), Options{LanguageLabel: "ASL"})

	assert.Equal(t, []string{"Ben Hart does not speak ASL"}, engine.Warnings(client, staff, timeofday.Monday, rng("09:00", "12:00"), nil))
}

func TestWarningsFractionalExcess(t *testing.T) {
	client := testClient()
	client.PrescribedHours = 1
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	engine := New(conformantSnapshot(client, staff), Options{})

	warnings := engine.Warnings(client, staff, timeofday.Monday, rng("09:00", "10:20"), nil)
	assert.Equal(t, []string{"Ana Lopez would exceed their prescribed hours by 0.33 hours"}, warnings)
}

func TestWarningsQuotaBoundary(t *testing.T) {
	client := testClient()
	client.PrescribedHours = 3
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	engine := New(conformantSnapshot(client, staff), Options{})

	// reaching the quota exactly is not an excess
	assert.Empty(t, engine.Warnings(client, staff, timeofday.Monday, rng("09:00", "12:00"), nil))

	client.PrescribedHours = 0
	assert.Empty(t, engine.Warnings(client, staff, timeofday.Monday, rng("09:00", "17:00"), nil))
}

func TestWarningsEditingExistingAppointment(t *testing.T) {
	client := testClient()
	client.PrescribedHours = 3
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	staff.MaxHoursPerDay = 3
	existing := appointment("appt-1", client.ID, staff.ID, timeofday.Monday, "09:00", "12:00")

	snapshot := conformantSnapshot(client, staff)
	snapshot.Appointments = []models.Appointment{existing}
	engine := New(snapshot, Options{})

	// moving the appointment within the same day neither double counts nor self-conflicts
	assert.Empty(t, engine.Warnings(client, staff, timeofday.Monday, rng("10:00", "13:00"), &existing))

	// without the existing appointment the same slot conflicts and exceeds
	warnings := engine.Warnings(client, staff, timeofday.Monday, rng("10:00", "13:00"), nil)
	assert.Contains(t, warnings, "Ana Lopez would exceed their prescribed hours by 3.00 hours")
	assert.Contains(t, warnings, "Ben Hart would exceed their maximum hours on Monday by 3.00 hours")
	assert.Contains(t, warnings, "Ben Hart is already booked on Monday from 10:00 AM to 1:00 PM")
}

func TestWarningsEditingReassignsStaff(t *testing.T) {
	client := testClient()
	previous := testStaff("staff-1", "Ben", "Hart", 1)
	next := testStaff("staff-2", "Cal", "Ives", 1)
	next.RequestedHours = 2
	existing := appointment("appt-1", client.ID, previous.ID, timeofday.Monday, "09:00", "12:00")

	snapshot := conformantSnapshot(client, next)
	snapshot.Appointments = []models.Appointment{existing}
	engine := New(snapshot, Options{})

	// the new staff member does not inherit the previous staff member's hours
	warnings := engine.Warnings(client, next, timeofday.Monday, rng("09:00", "12:00"), &existing)
	assert.Equal(t, []string{"Cal Ives would exceed their requested hours by 1.00 hours"}, warnings)
}

func TestWarningsSplitBlock(t *testing.T) {
	client := testClient()
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	snapshot := conformantSnapshot(client, staff)
	snapshot.Appointments = []models.Appointment{
		appointment("appt-1", client.ID, "staff-2", timeofday.Monday, "09:00", "12:00"),
	}
	engine := New(snapshot, Options{})

	warnings := engine.Warnings(client, staff, timeofday.Monday, rng("16:00", "19:00"), nil)
	assert.Equal(t, []string{"This creates a split schedule for Ana Lopez on Monday"}, warnings)

	// a middle block booking removes the gap
	snapshot.Appointments = append(snapshot.Appointments,
		appointment("appt-2", client.ID, "staff-2", timeofday.Monday, "12:30", "15:30"))
	engine = New(snapshot, Options{})
	assert.Empty(t, engine.Warnings(client, staff, timeofday.Monday, rng("16:00", "19:00"), nil))
}

func TestWarningsSplitBlockSymmetricForStaff(t *testing.T) {
	client := testClient()
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	snapshot := conformantSnapshot(client, staff)
	snapshot.Appointments = []models.Appointment{
		appointment("appt-1", "client-2", staff.ID, timeofday.Monday, "16:30", "18:00"),
	}
	engine := New(snapshot, Options{})

	warnings := engine.Warnings(client, staff, timeofday.Monday, rng("09:00", "11:00"), nil)
	assert.Equal(t, []string{"This creates a split schedule for Ben Hart on Monday"}, warnings)
}

func TestWarningsSplitBlockNeedsThreeBlocks(t *testing.T) {
	client := testClient()
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	snapshot := conformantSnapshot(client, staff)
	snapshot.Blocks = canonicalBlocks()[:2]
	snapshot.Appointments = []models.Appointment{
		appointment("appt-1", client.ID, "staff-2", timeofday.Monday, "09:00", "12:00"),
	}
	engine := New(snapshot, Options{})

	assert.Empty(t, engine.Warnings(client, staff, timeofday.Monday, rng("16:00", "19:00"), nil))
}

func TestWarningsSubstituteWindowDoesNotCount(t *testing.T) {
	client := testClient()
	staff := testStaff("staff-1", "Ben", "Hart", 1)
	engine := New(Snapshot{
		Staff: []models.Staff{staff},
		Availabilities: []models.Availability{
			window(client.Owner(), timeofday.Friday, "09:00", "12:00"),
			subWindow(staff.Owner(), timeofday.Friday, "09:00", "12:00"),
		},
	}, Options{})

	warnings := engine.Warnings(client, staff, timeofday.Friday, rng("09:00", "12:00"), nil)
	assert.Equal(t, []string{"Ben Hart is not available on Friday from 9:00 AM to 12:00 PM"}, warnings)
}

func TestSummarize(t *testing.T) {
	client := testClient()
	client.PrescribedHours = 4
	avail := NewAvailabilityIndex([]models.Availability{
		window(client.Owner(), timeofday.Monday, "09:00", "12:00"),
		window(client.Owner(), timeofday.Tuesday, "09:00", "10:20"),
	})
	bookings := NewBookingIndex([]models.Appointment{
		appointment("appt-1", client.ID, "staff-1", timeofday.Monday, "09:00", "11:00"),
		appointment("appt-2", client.ID, "staff-1", timeofday.Tuesday, "09:00", "10:20"),
		appointment("appt-3", client.ID, "staff-2", timeofday.Tuesday, "10:20", "11:00"),
	})

	summary := Summarize(ClientQuota(client), client.DisplayName(), avail, bookings)
	assert.Equal(t, "Ana Lopez", summary.DisplayName)
	assert.Equal(t, 4.33, summary.TotalHoursAvailable)
	assert.Equal(t, 4.0, summary.TotalHours)
	assert.Equal(t, 2.0, summary.TotalHoursByDay[timeofday.Monday])
	assert.Equal(t, 2.0, summary.TotalHoursByDay[timeofday.Tuesday])
	assert.Equal(t, 0.0, summary.TotalHoursByDay[timeofday.Friday])
	assert.True(t, summary.IsMaxedOnSessions)
}
