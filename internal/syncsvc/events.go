package syncsvc

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/schema"
)

// Event announces that a collection was written or refreshed. Records is
// the full collection after the change; observers must treat it as
// read-only.
type Event struct {
	Collection schema.Collection
	Records    []json.RawMessage
	Timestamp  time.Time
}

// Name returns the event name, e.g. "influencersUpdated".
func (e Event) Name() string {
	return string(e.Collection) + "Updated"
}

// Observer receives events synchronously on the goroutine that caused the
// change. An observer may read from the Service but must not write to it:
// a write from inside a notification waits for its own delivery turn and
// never gets it.
type Observer func(Event)

// Subscription is a registered observer. Close removes it.
type Subscription struct {
	id          uint64
	collections map[schema.Collection]bool
	observer    Observer
	reg         *registry
	once        sync.Once
}

// Close unregisters the observer. Safe to call more than once.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.reg.remove(sub.id)
	})
}

func (sub *Subscription) wants(c schema.Collection) bool {
	return len(sub.collections) == 0 || sub.collections[c]
}

type registry struct {
	mu     sync.Mutex
	nextID uint64
	subs   []*Subscription
	onSize func(int)
}

func (r *registry) add(obs Observer, collections []schema.Collection) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := &Subscription{id: r.nextID, observer: obs, reg: r}
	if len(collections) > 0 {
		sub.collections = make(map[schema.Collection]bool, len(collections))
		for _, c := range collections {
			sub.collections[c] = true
		}
	}
	r.subs = append(r.subs, sub)
	r.onSize(len(r.subs))
	return sub
}

func (r *registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subs {
		if sub.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			break
		}
	}
	r.onSize(len(r.subs))
}

// snapshot returns the observers registered right now, in registration
// order.
func (r *registry) snapshot() []*Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Subscription(nil), r.subs...)
}

// Subscribe registers obs for events on the given collections, or on every
// collection when none are given. Events already delivered are not
// replayed.
func (s *Service) Subscribe(obs Observer, collections ...schema.Collection) *Subscription {
	return s.observers.add(obs, collections)
}

// publishAndUnlock releases s.mu and delivers events. Each batch takes a
// ticket while s.mu is still held and is delivered only once every earlier
// ticket has been, so observers see events in write order. No lock is held
// while observers run, leaving them free to read from the Service.
func (s *Service) publishAndUnlock(events []Event) {
	if len(events) == 0 {
		s.mu.Unlock()
		return
	}
	ticket := s.nextTicket
	s.nextTicket++
	s.mu.Unlock()

	s.turnMu.Lock()
	for s.serving != ticket {
		s.turn.Wait()
	}
	s.turnMu.Unlock()

	defer func() {
		s.turnMu.Lock()
		s.serving++
		s.turn.Broadcast()
		s.turnMu.Unlock()
	}()

	for _, e := range events {
		s.dispatch(e)
	}
}

func (s *Service) dispatch(e Event) {
	delivered := 0
	for _, sub := range s.observers.snapshot() {
		if !sub.wants(e.Collection) {
			continue
		}
		s.deliver(sub, e)
		delivered++
	}
	s.metrics.RecordDeliveries(string(e.Collection), delivered)
	s.logger.Debug("broadcast", zap.String("event", e.Name()),
		zap.Int("records", len(e.Records)), zap.Int("observers", delivered))
}

// deliver isolates observer panics so one faulty observer cannot starve
// the rest.
func (s *Service) deliver(sub *Subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("observer panicked", zap.String("event", e.Name()), zap.Any("panic", r))
		}
	}()
	sub.observer(e)
}
