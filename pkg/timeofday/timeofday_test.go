package timeofday

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	v, err := Parse("09:30:15")
	require.NoError(t, err)
	assert.Equal(t, "09:30:15", v.String())

	short, err := Parse("13:05")
	require.NoError(t, err)
	assert.Equal(t, "13:05:00", short.String())

	_, err = Parse("25:00:00")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "9:00 AM", MustParse("09:00:00").Display())
	assert.Equal(t, "3:30 PM", MustParse("15:30:00").Display())
	assert.Equal(t, "9:00 AM to 12:00 PM", Range{Start: MustParse("09:00:00"), End: MustParse("12:00:00")}.Display())
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	nine, ten, eleven, noon := MustParse("09:00:00"), MustParse("10:00:00"), MustParse("11:00:00"), MustParse("12:00:00")

	assert.True(t, Overlaps(nine, noon, ten, eleven))
	assert.True(t, Overlaps(ten, eleven, nine, noon))
	assert.False(t, Overlaps(nine, ten, ten, eleven), "touching ranges must not overlap")
	assert.False(t, Overlaps(ten, eleven, nine, ten))
}

func TestContains(t *testing.T) {
	window := Range{Start: MustParse("09:00:00"), End: MustParse("12:00:00")}

	assert.True(t, window.Contains(window))
	assert.True(t, window.Contains(Range{Start: MustParse("10:00:00"), End: MustParse("11:00:00")}))
	assert.False(t, window.Contains(Range{Start: MustParse("12:30:00"), End: MustParse("15:30:00")}))
	assert.False(t, window.Contains(Range{Start: MustParse("08:30:00"), End: MustParse("10:00:00")}))
}

func TestDurationHoursRoundsOnlyForDisplay(t *testing.T) {
	third := DurationHours(MustParse("09:00:00"), MustParse("09:20:00"))
	assert.InDelta(t, 1.0/3.0, third, 1e-9)

	total := third * 3
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0.33, Round2(third))
}

func TestNewRangeValidation(t *testing.T) {
	r, err := NewRange("09:00:00", "12:00:00")
	require.NoError(t, err)
	assert.Equal(t, 3.0, r.Hours())

	_, err = NewRange("12:00:00", "09:00:00")
	assert.Error(t, err)
	_, err = NewRange("09:00:00", "09:00:00")
	assert.Error(t, err)
	_, err = NewRange("nine", "10:00:00")
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	var v TimeOfDay
	require.NoError(t, v.Scan([]byte("16:00:00")))
	assert.Equal(t, "16:00:00", v.String())

	require.NoError(t, v.Scan("08:15:00.000000"))
	assert.Equal(t, "08:15:00", v.String())

	require.NoError(t, v.Scan(time.Date(0, 1, 1, 7, 45, 0, 0, time.UTC)))
	assert.Equal(t, "07:45:00", v.String())

	assert.Error(t, v.Scan(3.5))

	value, err := MustParse("10:00:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "10:00:00", value)
}

func TestJSONRoundTrip(t *testing.T) {
	payload, err := json.Marshal(Range{Start: MustParse("09:00:00"), End: MustParse("12:00:00")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start_time":"09:00:00","end_time":"12:00:00"}`, string(payload))

	var decoded Range
	require.NoError(t, json.Unmarshal([]byte(`{"start_time":"12:30:00","end_time":"15:30:00"}`), &decoded))
	assert.Equal(t, MustParse("12:30:00"), decoded.Start)

	assert.Error(t, json.Unmarshal([]byte(`{"start_time":930}`), &decoded))
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Monday", DayName(Monday))
	assert.Equal(t, "Sunday", DayName(6))
	assert.Equal(t, "Day 9", DayName(9))
	assert.False(t, ValidDay(7))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, Weekdays())
}
