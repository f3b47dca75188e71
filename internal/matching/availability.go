package matching

import (
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

// AvailabilityIndex groups availability windows by owner and day.
type AvailabilityIndex struct {
	windows map[models.Owner]map[int][]models.Availability
}

// NewAvailabilityIndex indexes the provided windows. Windows with an invalid day are ignored.
func NewAvailabilityIndex(items []models.Availability) *AvailabilityIndex {
	idx := &AvailabilityIndex{windows: make(map[models.Owner]map[int][]models.Availability)}
	for _, item := range items {
		if !timeofday.ValidDay(item.Day) {
			continue
		}
		owner := item.Owner()
		if idx.windows[owner] == nil {
			idx.windows[owner] = make(map[int][]models.Availability)
		}
		idx.windows[owner][item.Day] = append(idx.windows[owner][item.Day], item)
	}
	return idx
}

// IsAvailable reports whether a window of owner on day covers r. Substitute windows
// only count when includeSub is set; clients never carry substitute windows.
func (i *AvailabilityIndex) IsAvailable(owner models.Owner, day int, r timeofday.Range, includeSub bool) bool {
	for _, window := range i.windows[owner][day] {
		if window.IsSub && !includeSub && owner.Kind == models.OwnerKindStaff {
			continue
		}
		if window.Range().Contains(r) {
			return true
		}
	}
	return false
}

// Windows returns the owner's windows for a day.
func (i *AvailabilityIndex) Windows(owner models.Owner, day int) []models.Availability {
	return i.windows[owner][day]
}

// TotalHours sums every window of the owner across the week.
func (i *AvailabilityIndex) TotalHours(owner models.Owner) float64 {
	var seconds int
	for _, windows := range i.windows[owner] {
		for _, window := range windows {
			seconds += window.Range().Seconds()
		}
	}
	return secondsToHours(seconds)
}
