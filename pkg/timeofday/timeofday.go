package timeofday

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Layout is the wall-clock wire format used by the API and the database.
const Layout = "15:04:05"

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall-clock time stored as seconds since midnight.
type TimeOfDay int

// Parse reads a 24-hour "HH:MM:SS" value. "HH:MM" is accepted as a shorthand.
func Parse(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty time of day")
	}
	layout := Layout
	if strings.Count(raw, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", raw, err)
	}
	return FromClock(t.Hour(), t.Minute(), t.Second()), nil
}

// MustParse is Parse for constants and tests.
func MustParse(raw string) TimeOfDay {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// FromClock builds a TimeOfDay from its components.
func FromClock(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// Clock returns hour, minute and second components.
func (t TimeOfDay) Clock() (int, int, int) {
	s := int(t)
	return s / 3600, (s % 3600) / 60, s % 60
}

// String renders the wire format.
func (t TimeOfDay) String() string {
	h, m, s := t.Clock()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Display renders a human readable 12-hour form such as "9:30 AM".
func (t TimeOfDay) Display() string {
	h, m, s := t.Clock()
	return time.Date(2000, 1, 1, h, m, s, 0, time.UTC).Format("3:04 PM")
}

// Valid reports whether the value is within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < secondsPerDay
}

// MarshalJSON encodes the value as "HH:MM:SS".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a "HH:MM:SS" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer for TIME columns.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner. lib/pq hands TIME columns over as text,
// other drivers may use time.Time.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	case time.Time:
		*t = FromClock(v.Hour(), v.Minute(), v.Second())
		return nil
	case int64:
		*t = TimeOfDay(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(raw string) error {
	// postgres may return fractional seconds, e.g. 09:00:00.000000
	if idx := strings.IndexByte(raw, '.'); idx > 0 {
		raw = raw[:idx]
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Range is a half-open wall-clock interval [Start, End).
type Range struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// NewRange parses both bounds and checks Start < End.
func NewRange(start, end string) (Range, error) {
	s, err := Parse(start)
	if err != nil {
		return Range{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Range{}, err
	}
	r := Range{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks ordering.
func (r Range) Validate() error {
	if !r.Start.Valid() || !r.End.Valid() {
		return fmt.Errorf("time range %s is outside a single day", r)
	}
	if r.Start >= r.End {
		return fmt.Errorf("start time %s must be before end time %s", r.Start, r.End)
	}
	return nil
}

// String renders "HH:MM:SS-HH:MM:SS".
func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Display renders "9:00 AM to 12:00 PM".
func (r Range) Display() string {
	return r.Start.Display() + " to " + r.End.Display()
}

// Overlaps reports whether both ranges share time. Touching ranges do not overlap.
func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Contains reports whether r fully covers other.
func (r Range) Contains(other Range) bool {
	return Contains(r.Start, r.End, other.Start, other.End)
}

// Seconds returns the duration in whole seconds.
func (r Range) Seconds() int {
	return int(r.End - r.Start)
}

// Hours returns the unrounded duration in hours.
func (r Range) Hours() float64 {
	return DurationHours(r.Start, r.End)
}

// Overlaps is the half-open interval test aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// Contains reports whether [windowStart, windowEnd] covers [start, end].
func Contains(windowStart, windowEnd, start, end TimeOfDay) bool {
	return windowStart <= start && windowEnd >= end
}

// DurationHours returns (end - start) in hours without rounding.
func DurationHours(start, end TimeOfDay) float64 {
	return float64(end-start) / 3600
}

// Round2 rounds to two decimals for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
