// Package calendar converts schedules to and from external formats and runs the
// periodic export job.
package calendar

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
)

// DefaultAnchor is the Sunday the recurring week is pinned to in exported calendars.
const DefaultAnchor = "2024-01-07"

const (
	propOnline     = ics.ComponentProperty("X-PLANNER-ONLINE")
	productID      = "-//weekly-planner//schedule export//EN"
	attendeeDomain = "planner.invalid"
	minutesPerWeek = planner.DaysPerWeek * 24 * 60
	week           = 7 * 24 * time.Hour
)

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://weekly-planner/events"))

var weekdays = [planner.DaysPerWeek]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// ICSCodec maps the recurring week onto real dates starting at its anchor (a Sunday, UTC).
// Every event is exported as a weekly recurring VEVENT.
type ICSCodec struct {
	anchor time.Time
}

// NewICSCodec parses anchor as YYYY-MM-DD. An empty anchor uses DefaultAnchor.
func NewICSCodec(anchor string) (*ICSCodec, error) {
	if anchor == "" {
		anchor = DefaultAnchor
	}
	t, err := time.ParseInLocation(time.DateOnly, anchor, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: anchor %q: %v", planner.ErrInvalidFormat, anchor, err)
	}
	if t.Weekday() != time.Sunday {
		return nil, fmt.Errorf("%w: anchor %s is a %s, not a Sunday", planner.ErrInvalidFormat, anchor, t.Weekday())
	}
	return &ICSCodec{anchor: t}, nil
}

// Encode renders u's schedule as an iCalendar document.
func (c *ICSCodec) Encode(u planner.User) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(u.Name())

	for _, e := range u.Events() {
		start := c.at(e.Start())
		end := c.at(e.End())
		if e.WrapsWeek() {
			end = end.Add(week)
		}

		ve := cal.AddEvent(eventUID(u.Name(), e))
		ve.SetDtStampTime(c.anchor)
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		ve.SetSummary(e.Name())
		if e.Location() != "" {
			ve.SetLocation(e.Location())
		}
		ve.SetProperty(ics.ComponentPropertyRrule, weeklyRule(e.Start().Day()))
		ve.SetProperty(propOnline, strings.ToUpper(fmt.Sprint(e.Online())))
		for _, name := range e.Invitees() {
			ve.AddAttendee(attendeeAddress(name), ics.WithCN(name))
		}
	}
	return cal.Serialize()
}

// Decode builds a user named owner from an iCalendar document. Dates are folded onto
// the recurring week by weekday and UTC clock. A VEVENT without attendees is owned by
// owner alone.
func (c *ICSCodec) Decode(r io.Reader, owner string) (planner.User, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return planner.User{}, fmt.Errorf("%w: parsing calendar: %v", planner.ErrInvalidFormat, err)
	}

	var events []planner.Event
	for _, ve := range cal.Events() {
		e, err := decodeEvent(ve, owner)
		if err != nil {
			return planner.User{}, fmt.Errorf("decoding calendar of %s: %w", owner, err)
		}
		events = append(events, e)
	}
	log.Debug("ics decoded", "user", owner, "event_count", len(events))
	return planner.NewUser(owner, events...)
}

func (c *ICSCodec) at(t planner.WeekTime) time.Time {
	return c.anchor.Add(time.Duration(int(t.Day())*24*60+t.MinutesSinceMidnight()) * time.Minute)
}

func decodeEvent(ve *ics.VEvent, owner string) (planner.Event, error) {
	summary := ""
	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		summary = p.Value
	}
	location := ""
	if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
		location = p.Value
	}
	online := false
	if p := ve.GetProperty(propOnline); p != nil {
		online = strings.EqualFold(strings.TrimSpace(p.Value), "true")
	}
	if p := ve.GetProperty(ics.ComponentPropertyRrule); p != nil {
		if err := checkWeekly(p.Value); err != nil {
			return planner.Event{}, fmt.Errorf("event %q: %w", summary, err)
		}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return planner.Event{}, fmt.Errorf("%w: event %q start: %v", planner.ErrInvalidFormat, summary, err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return planner.Event{}, fmt.Errorf("%w: event %q end: %v", planner.ErrInvalidFormat, summary, err)
	}
	length := int(end.Sub(start) / time.Minute)
	if length < 0 || length > minutesPerWeek {
		return planner.Event{}, fmt.Errorf("%w: event %q lasts %d minutes", planner.ErrInvalidFormat, summary, length)
	}

	start = start.UTC()
	from, err := planner.WeekTimeFromMinutes(int(start.Weekday()), start.Hour()*60+start.Minute())
	if err != nil {
		return planner.Event{}, err
	}
	endOrdinal := (from.Ordinal() + length) % minutesPerWeek
	to, err := planner.WeekTimeFromMinutes(endOrdinal/(24*60), endOrdinal%(24*60))
	if err != nil {
		return planner.Event{}, err
	}

	var invitees []string
	for _, a := range ve.Attendees() {
		invitees = append(invitees, attendeeName(a))
	}
	if len(invitees) == 0 {
		invitees = []string{owner}
	}
	return planner.NewEvent(summary, from, to, online, location, invitees)
}

func weeklyRule(d planner.Day) string {
	opt := rrule.ROption{Freq: rrule.WEEKLY, Byweekday: []rrule.Weekday{weekdays[d]}}
	return opt.RRuleString()
}

func checkWeekly(value string) error {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return fmt.Errorf("%w: rrule %q: %v", planner.ErrInvalidFormat, value, err)
	}
	if opt.Freq != rrule.WEEKLY {
		return fmt.Errorf("%w: rrule %q is not weekly", planner.ErrInvalidFormat, value)
	}
	return nil
}

func eventUID(owner string, e planner.Event) string {
	return uuid.NewSHA1(uidNamespace, []byte(owner+"\x00"+e.ExportFormat())).String()
}

func attendeeAddress(name string) string {
	return url.PathEscape(name) + "@" + attendeeDomain
}

func attendeeName(a *ics.Attendee) string {
	if cn, ok := a.ICalParameters[string(ics.ParameterCn)]; ok && len(cn) > 0 && cn[0] != "" {
		return cn[0]
	}
	local, _, _ := strings.Cut(a.Email(), "@")
	if name, err := url.PathUnescape(local); err == nil {
		return name
	}
	return local
}
