package planner

import (
	"fmt"
	"strconv"
	"strings"
)

// Export block field labels.
const (
	fieldName     = "name"
	fieldTime     = "time"
	fieldLocation = "location"
	fieldOnline   = "online"
	fieldUsers    = "users"
)

// ExportFormat renders the event as a canonical block:
//
//	name: CS3500 Morning Lecture
//	time: Tuesday: 09:50->Tuesday: 11:30
//	location: Churchill Hall 101
//	online: false
//	users: Prof. Lucia
//	Student Anon
//
// Invitees follow "users:" one per line, host first.
func (e Event) ExportFormat() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", fieldName, e.name)
	fmt.Fprintf(&b, "%s: %s->%s\n", fieldTime, e.start, e.end)
	fmt.Fprintf(&b, "%s: %s\n", fieldLocation, e.location)
	fmt.Fprintf(&b, "%s: %t\n", fieldOnline, e.online)
	fmt.Fprintf(&b, "%s: %s", fieldUsers, strings.Join(e.invitees, "\n"))
	return b.String()
}

// ParseEvent reads a block produced by ExportFormat.
func ParseEvent(block string) (Event, error) {
	var (
		name, location string
		timeField      string
		online         bool
		invitees       []string
		seen           = map[string]bool{}
		inUsers        bool
	)

	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	for _, line := range lines {
		if inUsers {
			if u := strings.TrimSpace(line); u != "" {
				invitees = append(invitees, u)
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Event{}, fmt.Errorf("%w: unexpected line %q", ErrInvalidFormat, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimPrefix(value, " ")
		if seen[key] {
			return Event{}, fmt.Errorf("%w: duplicate field %q", ErrInvalidFormat, key)
		}
		seen[key] = true

		switch key {
		case fieldName:
			name = value
		case fieldTime:
			timeField = value
		case fieldLocation:
			location = value
		case fieldOnline:
			v, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return Event{}, fmt.Errorf("%w: online flag %q", ErrInvalidFormat, value)
			}
			online = v
		case fieldUsers:
			inUsers = true
			if u := strings.TrimSpace(value); u != "" {
				invitees = append(invitees, u)
			}
		default:
			return Event{}, fmt.Errorf("%w: unknown field %q", ErrInvalidFormat, key)
		}
	}

	for _, required := range []string{fieldName, fieldTime, fieldLocation, fieldOnline, fieldUsers} {
		if !seen[required] {
			return Event{}, fmt.Errorf("%w: missing field %q", ErrInvalidFormat, required)
		}
	}

	start, end, err := parseTimeRange(timeField)
	if err != nil {
		return Event{}, err
	}
	return NewEvent(name, start, end, online, location, invitees)
}

// parseTimeRange reads "Tuesday: 09:50->Tuesday: 11:30".
func parseTimeRange(s string) (WeekTime, WeekTime, error) {
	from, to, ok := strings.Cut(s, "->")
	if !ok {
		return WeekTime{}, WeekTime{}, fmt.Errorf("%w: time range %q", ErrInvalidFormat, s)
	}
	start, err := parseStamp(from)
	if err != nil {
		return WeekTime{}, WeekTime{}, err
	}
	end, err := parseStamp(to)
	if err != nil {
		return WeekTime{}, WeekTime{}, err
	}
	return start, end, nil
}

// parseStamp reads "Tuesday: 09:50".
func parseStamp(s string) (WeekTime, error) {
	day, clock, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return WeekTime{}, fmt.Errorf("%w: time %q", ErrInvalidFormat, s)
	}
	clock = strings.TrimSpace(clock)
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return WeekTime{}, fmt.Errorf("%w: time %q", ErrInvalidFormat, s)
	}
	return ParseWeekTime(strings.TrimSpace(day), hh+mm)
}
