package calendar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/weekly-planner/backend/internal/planner"
)

const userHeader = "user"

// EncodeSchedule writes u as a schedule document: a "user: NAME" header followed by
// one export block per event, each preceded by a blank line.
func EncodeSchedule(w io.Writer, u planner.User) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s: %s\n", userHeader, u.Name())
	for _, e := range u.Events() {
		fmt.Fprintf(bw, "\n%s\n", e.ExportFormat())
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing schedule for %s: %w", u.Name(), err)
	}
	return nil
}

// DecodeSchedule reads a document produced by EncodeSchedule. Events are validated
// against each other but not against any other user's calendar. Oversized lines and
// bodies cut off by http.MaxBytesReader are reported as ErrInvalidFormat.
func DecodeSchedule(r io.Reader) (planner.User, error) {
	scanner := bufio.NewScanner(r)
	var (
		name   string
		header bool
		blocks []string
		block  []string
	)
	flush := func() {
		if len(block) > 0 {
			blocks = append(blocks, strings.Join(block, "\n"))
			block = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !header {
			if strings.TrimSpace(line) == "" {
				continue
			}
			key, value, ok := strings.Cut(line, ":")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), userHeader) {
				return planner.User{}, fmt.Errorf("%w: schedule must start with %q, got %q",
					planner.ErrInvalidFormat, userHeader+": NAME", line)
			}
			name = strings.TrimSpace(value)
			header = true
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.Is(err, bufio.ErrTooLong) || errors.As(err, &tooLarge) {
			return planner.User{}, fmt.Errorf("%w: reading schedule: %v", planner.ErrInvalidFormat, err)
		}
		return planner.User{}, fmt.Errorf("reading schedule: %w", err)
	}
	flush()
	if !header {
		return planner.User{}, fmt.Errorf("%w: empty schedule document", planner.ErrInvalidFormat)
	}

	events := make([]planner.Event, 0, len(blocks))
	for i, b := range blocks {
		e, err := planner.ParseEvent(b)
		if err != nil {
			return planner.User{}, fmt.Errorf("parsing event %d of %s: %w", i+1, name, err)
		}
		events = append(events, e)
	}
	return planner.NewUser(name, events...)
}

// ScheduleView renders a human readable listing grouped by day, Sunday first.
func ScheduleView(u planner.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\n", u.Name())
	byDay := u.Schedule().GroupByDay()
	for _, d := range planner.Days() {
		fmt.Fprintf(&b, "%s:\n", d)
		for _, e := range byDay[d] {
			for _, line := range strings.Split(e.ExportFormat(), "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	}
	return b.String()
}
