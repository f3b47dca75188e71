package models

import (
	"strings"
	"time"
)

// Client is the service recipient being scheduled.
type Client struct {
	ID                 string    `db:"id" json:"id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	PrescribedHours    int       `db:"prescribed_hours" json:"prescribed_hours"`
	ReqSkillLevel      int       `db:"req_skill_level" json:"req_skill_level"`
	RequiresLanguage   bool      `db:"requires_language" json:"requires_language"`
	EvalDone           bool      `db:"eval_done" json:"eval_done"`
	IsOnboarding       bool      `db:"is_onboarding" json:"is_onboarding"`
	IsManuallyMaxedOut bool      `db:"is_manually_maxed_out" json:"is_manually_maxed_out"`
	Notes              string    `db:"notes" json:"notes"`
	SubNotes           string    `db:"sub_notes" json:"sub_notes"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName is the stable label used in warnings and exports.
func (c Client) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Owner returns the availability owner reference for the client.
func (c Client) Owner() Owner {
	return ClientOwner(c.ID)
}

// RequiredSkill returns the clamped skill requirement.
func (c Client) RequiredSkill() int {
	return ClampSkill(c.ReqSkillLevel)
}

// ClientFilter captures filtering options for listing clients.
type ClientFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
