package timeofday

import "fmt"

// Days are indexed Monday-first: 0 is Monday and 6 is Sunday.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysPerWeek is the number of valid day indexes.
const DaysPerWeek = 7

var dayNames = [DaysPerWeek]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// ValidDay reports whether day is within 0..6.
func ValidDay(day int) bool {
	return day >= Monday && day <= Sunday
}

// DayName returns the English name for a day index.
func DayName(day int) string {
	if !ValidDay(day) {
		return fmt.Sprintf("Day %d", day)
	}
	return dayNames[day]
}

// Weekdays returns Monday through Friday.
func Weekdays() []int {
	return []int{Monday, Tuesday, Wednesday, Thursday, Friday}
}
