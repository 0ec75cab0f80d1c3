package planner

import (
	"errors"
	"fmt"
	"sync"
)

// Reader is the read-only query surface used by strategies and presentation layers.
type Reader interface {
	Users() []User
	User(name string) (User, bool)
	Events(user string) ([]Event, error)
	EventAt(user string, t WeekTime) (Event, bool, error)
}

// Planner owns every user's schedule and propagates event changes across invitees.
//
// Each mutation runs against a staged copy of the schedules it touches and is
// committed only if every step succeeded, so callers never observe an event held
// by some invitees and not others. A single mutex serializes all operations.
type Planner struct {
	mu        sync.Mutex
	order     []string
	schedules map[string]*Schedule
}

var _ Reader = (*Planner)(nil)

// New creates a planner holding users in the given order.
func New(users ...User) (*Planner, error) {
	p := &Planner{schedules: make(map[string]*Schedule)}
	for _, u := range users {
		if err := p.AddUser(u); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddUser registers u as-is. Unlike ImportUser it does not propagate u's events.
func (p *Planner) AddUser(u User) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.schedules[u.name]; exists {
		return fmt.Errorf("adding user %s: %w", u.name, ErrDuplicateUser)
	}
	p.order = append(p.order, u.name)
	p.schedules[u.name] = u.Schedule()
	return nil
}

// ImportUser registers u and replays each of u's events through AddEvent so every
// other registered invitee receives them. Nothing is applied if any invitee conflicts.
func (p *Planner) ImportUser(u User) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.schedules[u.name]; exists {
		return fmt.Errorf("importing user %s: %w", u.name, ErrDuplicateUser)
	}

	s := p.begin()
	s.addUser(u)
	for _, e := range u.Events() {
		if err := s.propagateAdd(e); err != nil {
			return fmt.Errorf("importing user %s: %w", u.name, err)
		}
	}
	s.commit()
	return nil
}

// AddEvent adds e to the schedule of every registered invitee that does not already
// hold it. A conflict for any invitee rejects the whole operation with *ConflictError.
func (p *Planner) AddEvent(e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.begin()
	if err := s.propagateAdd(e); err != nil {
		return err
	}
	s.commit()
	return nil
}

// RemoveEvent removes e on behalf of acting. The host removes the event from every
// invitee and fails with ErrNotFound if any invitee does not hold it. Any other
// invitee removes only their own copy and is dropped from the invitee list of the
// copies the remaining holders keep.
func (p *Planner) RemoveEvent(e Event, acting string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.begin()
	if err := s.removeForUser(e, acting); err != nil {
		return err
	}
	s.commit()
	return nil
}

// RemoveInvitee drops user from the invitee list of every other holder's copy of e.
func (p *Planner) RemoveInvitee(e Event, user string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.schedules[user]; !ok {
		return fmt.Errorf("removing invitee %s: user %w", user, ErrNotFound)
	}
	s := p.begin()
	s.stripInvitee(e, user)
	s.commit()
	return nil
}

// ModifyEvent replaces previous with updated for every invitee. The original host must
// still be invited. The old event is restored untouched if updated cannot be placed.
func (p *Planner) ModifyEvent(previous, updated Event) error {
	host := previous.Host()
	if !updated.HasInvitee(host) {
		return fmt.Errorf("modifying event %q: %w: %s", previous.Name(), ErrHostRequired, host)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.begin()
	if err := s.removeForUser(previous, host); err != nil {
		return fmt.Errorf("modifying event %q: %w", previous.Name(), err)
	}
	if err := s.propagateAdd(updated); err != nil {
		return fmt.Errorf("modifying event %q: %w", previous.Name(), err)
	}
	s.commit()
	return nil
}

// Users returns copies of every user in registration order.
func (p *Planner) Users() []User {
	p.mu.Lock()
	defer p.mu.Unlock()

	users := make([]User, 0, len(p.order))
	for _, name := range p.order {
		users = append(users, User{name: name, schedule: p.schedules[name].Clone()})
	}
	return users
}

// User returns a copy of the named user.
func (p *Planner) User(name string) (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.schedules[name]
	if !ok {
		return User{}, false
	}
	return User{name: name, schedule: s.Clone()}, true
}

// Events returns the named user's events in insertion order.
func (p *Planner) Events(user string) ([]Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.schedules[user]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", user, ErrNotFound)
	}
	return s.Events(), nil
}

// EventAt returns the event occupying t in the named user's schedule.
func (p *Planner) EventAt(user string, t WeekTime) (Event, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.schedules[user]
	if !ok {
		return Event{}, false, fmt.Errorf("user %s: %w", user, ErrNotFound)
	}
	e, found := s.EventAt(t)
	return e, found, nil
}

// Snapshot returns a deep copy of all users, suitable for Restore.
func (p *Planner) Snapshot() []User {
	return p.Users()
}

// Restore replaces the planner's state with users.
func (p *Planner) Restore(users []User) error {
	order := make([]string, 0, len(users))
	schedules := make(map[string]*Schedule, len(users))
	for _, u := range users {
		if _, exists := schedules[u.name]; exists {
			return fmt.Errorf("restoring user %s: %w", u.name, ErrDuplicateUser)
		}
		order = append(order, u.name)
		schedules[u.name] = u.Schedule()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = order
	p.schedules = schedules
	return nil
}

// stage is a copy-on-write view of the planner used by one mutation.
// Schedules are cloned on first write; commit swaps them in.
type stage struct {
	p       *Planner
	touched map[string]*Schedule
	added   []string
}

func (p *Planner) begin() *stage {
	return &stage{p: p, touched: make(map[string]*Schedule)}
}

// names lists registered users followed by users added in this stage.
func (s *stage) names() []string {
	return append(append([]string(nil), s.p.order...), s.added...)
}

func (s *stage) exists(name string) bool {
	_, ok := s.view(name)
	return ok
}

// view returns the current schedule for name without cloning it. Do not mutate.
func (s *stage) view(name string) (*Schedule, bool) {
	if sch, ok := s.touched[name]; ok {
		return sch, true
	}
	sch, ok := s.p.schedules[name]
	return sch, ok
}

// write returns a private, mutable copy of name's schedule.
func (s *stage) write(name string) *Schedule {
	if sch, ok := s.touched[name]; ok {
		return sch
	}
	sch := s.p.schedules[name].Clone()
	s.touched[name] = sch
	return sch
}

func (s *stage) addUser(u User) {
	s.added = append(s.added, u.name)
	s.touched[u.name] = u.Schedule()
}

func (s *stage) commit() {
	s.p.order = append(s.p.order, s.added...)
	for name, sch := range s.touched {
		s.p.schedules[name] = sch
	}
}

func (s *stage) propagateAdd(e Event) error {
	for _, name := range s.names() {
		if !e.HasInvitee(name) {
			continue
		}
		if current, _ := s.view(name); current.Contains(e) {
			continue
		}
		if err := s.write(name).Add(e); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				conflict.User = name
				return conflict
			}
			return fmt.Errorf("adding event %q for %s: %w", e.Name(), name, err)
		}
	}
	return nil
}

func (s *stage) removeForUser(e Event, acting string) error {
	if !s.exists(acting) {
		return fmt.Errorf("removing event %q: user %s: %w", e.Name(), acting, ErrNotFound)
	}

	if acting == e.Host() {
		for _, name := range s.names() {
			if !e.HasInvitee(name) {
				continue
			}
			if !s.write(name).Remove(e) {
				return fmt.Errorf("removing event %q: not in %s's schedule: %w", e.Name(), name, ErrNotFound)
			}
		}
		return nil
	}

	if !s.write(acting).Remove(e) {
		return fmt.Errorf("removing event %q: not in %s's schedule: %w", e.Name(), acting, ErrNotFound)
	}
	s.stripInvitee(e, acting)
	return nil
}

func (s *stage) stripInvitee(e Event, user string) {
	updated := e.WithoutInvitee(user)
	for _, name := range s.names() {
		if name == user {
			continue
		}
		if current, _ := s.view(name); current.Contains(e) {
			s.write(name).Replace(e, updated)
		}
	}
}
