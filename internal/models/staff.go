package models

import (
	"strings"
	"time"
)

const (
	MinSkillLevel = 1
	MaxSkillLevel = 3
)

// Staff is a technician or therapist who can be assigned to appointments.
type Staff struct {
	ID                 string    `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	BgColor            string    `db:"bg_color" json:"bg_color"`
	TextColor          string    `db:"text_color" json:"text_color"`
	RequestedHours     int       `db:"requested_hours" json:"requested_hours"`
	MaxHoursPerDay     int       `db:"max_hours_per_day" json:"max_hours_per_day"`
	SkillLevel         int       `db:"skill_level" json:"skill_level"`
	SpeaksLanguage     bool      `db:"speaks_language" json:"speaks_language"`
	IsManuallyMaxedOut bool      `db:"is_manually_maxed_out" json:"is_manually_maxed_out"`
	Notes              string    `db:"notes" json:"notes"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName is the stable label used in warnings and exports.
func (s Staff) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Owner returns the availability owner reference for the staff member.
func (s Staff) Owner() Owner {
	return StaffOwner(s.ID)
}

// Skill returns the clamped skill level.
func (s Staff) Skill() int {
	return ClampSkill(s.SkillLevel)
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	Search           string
	MinSkillLevel    int
	RequiresLanguage bool
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}

// ClampSkill keeps a skill level within [MinSkillLevel, MaxSkillLevel].
func ClampSkill(level int) int {
	if level < MinSkillLevel {
		return MinSkillLevel
	}
	if level > MaxSkillLevel {
		return MaxSkillLevel
	}
	return level
}
