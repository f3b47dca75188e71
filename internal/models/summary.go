package models

// PersonSummary holds computed hour totals for a client or staff member.
type PersonSummary struct {
	Owner               Owner      `json:"owner"`
	DisplayName         string     `json:"display_name"`
	HourQuota           int        `json:"hour_quota"`
	TotalHoursAvailable float64    `json:"total_hours_available"`
	TotalHours          float64    `json:"total_hours"`
	TotalHoursByDay     [7]float64 `json:"total_hours_by_day"`
	IsMaxedOnSessions   bool       `json:"is_maxed_on_sessions"`
}
