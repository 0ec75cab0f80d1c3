// Package planner holds the weekly scheduling model: week-relative times, events,
// per-user schedules and the Planner that keeps every invitee's schedule consistent.
package planner

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
)

// Day is a day of the recurring week. Sunday is the first day.
type Day int

const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysPerWeek is the number of days in the recurring week.
const DaysPerWeek = 7

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = DaysPerWeek * minutesPerDay
)

var dayNames = [DaysPerWeek]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Days returns every day of the week in order.
func Days() []Day {
	return []Day{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// Valid reports whether d is one of the seven week days.
func (d Day) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Day) String() string {
	if !d.Valid() {
		return "Day(" + strconv.Itoa(int(d)) + ")"
	}
	return dayNames[d]
}

// ParseDay resolves a day name case-insensitively ("tuesday", "Tuesday", "TUESDAY").
func ParseDay(name string) (Day, error) {
	folder := cases.Fold()
	folded := folder.String(name)
	for i, n := range dayNames {
		if folder.String(n) == folded {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidFormat, name)
}

// WeekTime is a minute-granular instant inside the recurring week.
// Ordering is lexicographic on (day, hour, minute) and does not wrap:
// Sunday 00:00 is the first instant and Saturday 23:59 the last.
type WeekTime struct {
	day    Day
	hour   int
	minute int
}

// StartOfWeek is Sunday 00:00.
var StartOfWeek = WeekTime{day: Sunday}

// EndOfWeek is Saturday 23:59, the effective end of events running into the next week.
var EndOfWeek = WeekTime{day: Saturday, hour: 23, minute: 59}

// NewWeekTime validates and builds a WeekTime. Hours may be 0-24, minutes 0-59.
func NewWeekTime(day Day, hour, minute int) (WeekTime, error) {
	if !day.Valid() {
		return WeekTime{}, fmt.Errorf("%w: day index %d out of range", ErrInvalidFormat, int(day))
	}
	if hour < 0 || hour > 24 {
		return WeekTime{}, fmt.Errorf("%w: hour %d out of range", ErrInvalidFormat, hour)
	}
	if minute < 0 || minute > 59 {
		return WeekTime{}, fmt.Errorf("%w: minute %d out of range", ErrInvalidFormat, minute)
	}
	return WeekTime{day: day, hour: hour, minute: minute}, nil
}

// MustWeekTime is NewWeekTime for constant inputs; it panics on invalid values.
func MustWeekTime(day Day, hour, minute int) WeekTime {
	t, err := NewWeekTime(day, hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseWeekTime builds a WeekTime from a day name and a four digit "HHMM" clock.
func ParseWeekTime(dayName, clock string) (WeekTime, error) {
	day, err := ParseDay(dayName)
	if err != nil {
		return WeekTime{}, err
	}
	if len(clock) != 4 {
		return WeekTime{}, fmt.Errorf("%w: clock %q must be HHMM", ErrInvalidFormat, clock)
	}
	for _, c := range clock {
		if c < '0' || c > '9' {
			return WeekTime{}, fmt.Errorf("%w: clock %q must be HHMM", ErrInvalidFormat, clock)
		}
	}
	hour, _ := strconv.Atoi(clock[:2])
	minute, _ := strconv.Atoi(clock[2:])
	return NewWeekTime(day, hour, minute)
}

// WeekTimeFromMinutes builds a WeekTime from a day index and a minute-of-day count.
func WeekTimeFromMinutes(dayIndex, totalMinutes int) (WeekTime, error) {
	if totalMinutes < 0 {
		return WeekTime{}, fmt.Errorf("%w: negative minute count %d", ErrInvalidFormat, totalMinutes)
	}
	return NewWeekTime(Day(dayIndex), totalMinutes/60, totalMinutes%60)
}

// weekTimeFromOrdinal inverts Ordinal for values in [0, minutesPerWeek).
func weekTimeFromOrdinal(ordinal int) WeekTime {
	return WeekTime{
		day:    Day(ordinal / minutesPerDay),
		hour:   (ordinal % minutesPerDay) / 60,
		minute: ordinal % 60,
	}
}

func (t WeekTime) Day() Day    { return t.day }
func (t WeekTime) Hour() int   { return t.hour }
func (t WeekTime) Minute() int { return t.minute }

// MinutesSinceMidnight returns 60*hour + minute.
func (t WeekTime) MinutesSinceMidnight() int {
	return 60*t.hour + t.minute
}

// Ordinal is the minute of the week. Times past 23:59 (hour 24) are clamped to the
// day's last minute so Ordinal never orders two times differently than Compare.
func (t WeekTime) Ordinal() int {
	m := t.MinutesSinceMidnight()
	if m >= minutesPerDay {
		m = minutesPerDay - 1
	}
	return int(t.day)*minutesPerDay + m
}

// Compare returns -1, 0 or 1 ordering by day, then hour, then minute.
func (t WeekTime) Compare(other WeekTime) int {
	switch {
	case t.day != other.day:
		return cmpInt(int(t.day), int(other.day))
	case t.hour != other.hour:
		return cmpInt(t.hour, other.hour)
	default:
		return cmpInt(t.minute, other.minute)
	}
}

func (t WeekTime) Before(other WeekTime) bool { return t.Compare(other) < 0 }
func (t WeekTime) After(other WeekTime) bool  { return t.Compare(other) > 0 }
func (t WeekTime) Equal(other WeekTime) bool  { return t.Compare(other) == 0 }

// Clock formats the time of day as "HHMM".
func (t WeekTime) Clock() string {
	return fmt.Sprintf("%02d%02d", t.hour, t.minute)
}

// String formats as "Tuesday: 08:30".
func (t WeekTime) String() string {
	return fmt.Sprintf("%s: %02d:%02d", t.day, t.hour, t.minute)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
