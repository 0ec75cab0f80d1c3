// Package service serializes planner mutations and carries their side effects:
// persistence, change broadcasts and the active host marker.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
	"github.com/weekly-planner/backend/internal/storage/models"
	"github.com/weekly-planner/backend/internal/strategy"
)

// Store persists complete planner snapshots.
type Store interface {
	Save(ctx context.Context, users []planner.User) error
	Load(ctx context.Context) ([]planner.User, error)
}

// Settings persists small key/value settings such as the host marker.
type Settings interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Notifier is told about every committed change.
type Notifier interface {
	BroadcastUserAdded(user string, eventCount int)
	BroadcastScheduleImported(user string, eventCount int)
	BroadcastEventAdded(e planner.Event)
	BroadcastEventRemoved(e planner.Event, acting string)
	BroadcastEventModified(previous, updated planner.Event)
	BroadcastInviteeRemoved(e planner.Event, user string)
	BroadcastHostChanged(previous, host string)
}

// Options configures a Service. Nil collaborators are skipped.
type Options struct {
	Store    Store
	Settings Settings
	Notifier Notifier
	// Strategy is used when a slot request names none. Defaults to AnyTime.
	Strategy strategy.Strategy
	// Hours configures the work-hours strategy. Defaults to strategy.DefaultHours.
	Hours strategy.Hours
	// Host is the initial host marker when none is stored.
	Host string
}

// Service is the single entry point for reads and writes of planner state.
type Service struct {
	mu         sync.Mutex
	planner    *planner.Planner
	store      Store
	settings   Settings
	notifier   Notifier
	strategies map[string]strategy.Strategy
	fallback   strategy.Strategy
	host       string
}

// New wraps p. Call Load to restore persisted state.
func New(p *planner.Planner, opts Options) *Service {
	if len(opts.Hours.Days) == 0 {
		opts.Hours = strategy.DefaultHours()
	}
	s := &Service{
		planner:  p,
		store:    opts.Store,
		settings: opts.Settings,
		notifier: opts.Notifier,
		host:     opts.Host,
		fallback: opts.Strategy,
		strategies: map[string]strategy.Strategy{
			strategy.NameAnyTime:   strategy.AnyTime{},
			strategy.NameWorkHours: strategy.WorkHours{Hours: opts.Hours},
		},
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.fallback == nil {
		s.fallback = strategy.AnyTime{}
	}
	s.strategies[s.fallback.Name()] = s.fallback
	return s
}

// Load replaces the planner's state with the stored snapshot and restores the host marker.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		users, err := s.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("loading planner: %w", err)
		}
		if err := s.planner.Restore(users); err != nil {
			return fmt.Errorf("loading planner: %w", err)
		}
		log.Info("planner loaded", "users", len(users))
	}
	if s.settings != nil {
		host, ok, err := s.settings.Get(ctx, models.SettingHost)
		if err != nil {
			return fmt.Errorf("loading host: %w", err)
		}
		if ok {
			s.host = host
		}
	}
	return nil
}

// mutate runs op under the service lock and persists the result. If persisting
// fails the planner is rolled back to its state before op.
func (s *Service) mutate(ctx context.Context, op func() error) error {
	before := s.planner.Snapshot()
	if err := op(); err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.planner.Snapshot()); err != nil {
		if rerr := s.planner.Restore(before); rerr != nil {
			log.Error("rolling back planner", rerr)
		}
		return fmt.Errorf("persisting planner: %w", err)
	}
	return nil
}

// AddUser registers a user with an empty schedule. The first user becomes host
// when no host is set.
func (s *Service) AddUser(ctx context.Context, name string) error {
	u, err := planner.NewUser(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate(ctx, func() error { return s.planner.AddUser(u) }); err != nil {
		return err
	}
	log.Info("user added", "user", name)
	s.notifier.BroadcastUserAdded(name, 0)
	s.claimHost(ctx, name)
	return nil
}

// ImportSchedule registers u and sends each of u's events to the other invitees.
func (s *Service) ImportSchedule(ctx context.Context, u planner.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate(ctx, func() error { return s.planner.ImportUser(u) }); err != nil {
		return err
	}
	n := len(u.Events())
	log.Info("schedule imported", "user", u.Name(), "events", n)
	s.notifier.BroadcastScheduleImported(u.Name(), n)
	s.claimHost(ctx, u.Name())
	return nil
}

func (s *Service) AddEvent(ctx context.Context, e planner.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate(ctx, func() error { return s.planner.AddEvent(e) }); err != nil {
		return err
	}
	log.Info("event added", "event", e.Name(), "host", e.Host())
	s.notifier.BroadcastEventAdded(e)
	return nil
}

// RemoveEvent removes e on behalf of acting. An empty acting user means the
// current host.
func (s *Service) RemoveEvent(ctx context.Context, e planner.Event, acting string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acting == "" {
		acting = s.host
	}
	if acting == "" {
		return fmt.Errorf("%w: no acting user and no host set", planner.ErrInvalidFormat)
	}
	if err := s.mutate(ctx, func() error { return s.planner.RemoveEvent(e, acting) }); err != nil {
		return err
	}
	log.Info("event removed", "event", e.Name(), "acting", acting)
	s.notifier.BroadcastEventRemoved(e, acting)
	return nil
}

func (s *Service) RemoveInvitee(ctx context.Context, e planner.Event, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate(ctx, func() error { return s.planner.RemoveInvitee(e, user) }); err != nil {
		return err
	}
	s.notifier.BroadcastInviteeRemoved(e, user)
	return nil
}

func (s *Service) ModifyEvent(ctx context.Context, previous, updated planner.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutate(ctx, func() error { return s.planner.ModifyEvent(previous, updated) }); err != nil {
		return err
	}
	log.Info("event modified", "event", previous.Name(), "updated", updated.Name())
	s.notifier.BroadcastEventModified(previous, updated)
	return nil
}

// Host returns the user whose calendar is the active context.
func (s *Service) Host() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

// SetHost makes name the active host. name must be a registered user.
func (s *Service) SetHost(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.planner.User(name); !ok {
		return fmt.Errorf("setting host %s: user %w", name, planner.ErrNotFound)
	}
	return s.setHost(ctx, name)
}

func (s *Service) setHost(ctx context.Context, name string) error {
	if s.settings != nil {
		if err := s.settings.Set(ctx, models.SettingHost, name); err != nil {
			return fmt.Errorf("persisting host: %w", err)
		}
	}
	previous := s.host
	s.host = name
	if previous != name {
		s.notifier.BroadcastHostChanged(previous, name)
	}
	return nil
}

// claimHost makes name host when there is no usable host yet.
func (s *Service) claimHost(ctx context.Context, name string) {
	if s.host != "" {
		if _, ok := s.planner.User(s.host); ok {
			return
		}
	}
	if err := s.setHost(ctx, name); err != nil {
		log.Error("claiming host", err, "user", name)
	}
}

// StrategyNames lists the available slot strategies.
func (s *Service) StrategyNames() []string {
	names := make([]string, 0, len(s.strategies))
	for n := range s.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FindSlot returns the candidate event the named strategy picks, without adding it.
// An empty name uses the configured default strategy.
func (s *Service) FindSlot(req strategy.SlotRequest, strategyName string) (planner.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findSlot(req, strategyName)
}

// ScheduleSlot finds a slot and adds the resulting event in one step.
func (s *Service) ScheduleSlot(ctx context.Context, req strategy.SlotRequest, strategyName string) (planner.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var e planner.Event
	err := s.mutate(ctx, func() error {
		var err error
		if e, err = s.findSlot(req, strategyName); err != nil {
			return err
		}
		return s.planner.AddEvent(e)
	})
	if err != nil {
		return planner.Event{}, err
	}
	log.Info("slot scheduled", "event", e.Name(), "start", e.Start().String())
	s.notifier.BroadcastEventAdded(e)
	return e, nil
}

func (s *Service) findSlot(req strategy.SlotRequest, name string) (planner.Event, error) {
	st := s.fallback
	if name != "" {
		var ok bool
		if st, ok = s.strategies[name]; !ok {
			return planner.Event{}, fmt.Errorf("%w: unknown strategy %q", planner.ErrInvalidFormat, name)
		}
	}
	return st.FindSlot(s.planner, req)
}

// Reads pass straight through; the planner guards its own state.

func (s *Service) Users() []planner.User {
	return s.planner.Users()
}

func (s *Service) User(name string) (planner.User, bool) {
	return s.planner.User(name)
}

func (s *Service) Events(user string) ([]planner.Event, error) {
	return s.planner.Events(user)
}

func (s *Service) EventAt(user string, t planner.WeekTime) (planner.Event, bool, error) {
	return s.planner.EventAt(user, t)
}

// IsClientError reports whether err stems from the request rather than the server.
func IsClientError(err error) bool {
	for _, target := range []error{
		planner.ErrInvalidFormat, planner.ErrConflict, planner.ErrNotFound,
		planner.ErrNoSlotAvailable, planner.ErrDuplicateUser, planner.ErrHostRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type nopNotifier struct{}

func (nopNotifier) BroadcastUserAdded(string, int)                      {}
func (nopNotifier) BroadcastScheduleImported(string, int)               {}
func (nopNotifier) BroadcastEventAdded(planner.Event)                   {}
func (nopNotifier) BroadcastEventRemoved(planner.Event, string)         {}
func (nopNotifier) BroadcastEventModified(planner.Event, planner.Event) {}
func (nopNotifier) BroadcastInviteeRemoved(planner.Event, string)       {}
func (nopNotifier) BroadcastHostChanged(string, string)                 {}
