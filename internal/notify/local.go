package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

var errMissingTrigger = errors.New("trigger has neither instant nor weekly recurrence")

type entry struct {
	id      string
	trigger Trigger
	payload Payload
	next    time.Time
}

// Local is an in-process Scheduler. A single timer is kept armed at the
// earliest pending entry; a refresh channel forces re-evaluation whenever the
// entry set changes. Fired entries are delivered on Firings().
type Local struct {
	log *zap.Logger
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	refresh chan struct{}
	firings chan Firing
}

// NewLocal creates an idle Local scheduler. Run must be started for entries
// to fire.
func NewLocal(log *zap.Logger) *Local {
	return &Local{
		log:     log,
		now:     time.Now,
		entries: make(map[string]*entry),
		refresh: make(chan struct{}, 1),
		firings: make(chan Firing, 16),
	}
}

// Firings returns the channel of delivered alerts.
func (l *Local) Firings() <-chan Firing {
	return l.firings
}

// RequestPermission always grants; the in-process scheduler needs none.
func (l *Local) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

// AddFiring registers (or replaces) a pending entry.
func (l *Local) AddFiring(ctx context.Context, entryID string, trigger Trigger, payload Payload) error {
	next, err := l.resolve(trigger)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.entries[entryID] = &entry{id: entryID, trigger: trigger, payload: payload, next: next}
	l.mu.Unlock()

	l.kick()
	return nil
}

// RemoveFiring drops a pending entry. Removing an unknown id is a no-op.
func (l *Local) RemoveFiring(ctx context.Context, entryID string) error {
	l.mu.Lock()
	delete(l.entries, entryID)
	l.mu.Unlock()

	l.kick()
	return nil
}

// RemoveAllFirings drops every pending entry.
func (l *Local) RemoveAllFirings(ctx context.Context) error {
	l.mu.Lock()
	l.entries = make(map[string]*entry)
	l.mu.Unlock()

	l.kick()
	return nil
}

// Pending returns the ids of all pending entries. Used by tests and the
// status surface.
func (l *Local) Pending() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	return ids
}

// resolve computes the entry's next concrete firing instant.
func (l *Local) resolve(t Trigger) (time.Time, error) {
	if t.Repeats {
		return alarm.NextWeekdayOccurrence(t.Weekly, l.now()), nil
	}
	if t.At.IsZero() {
		return time.Time{}, errMissingTrigger
	}
	return t.At, nil
}

// kick signals the run loop to re-evaluate its timer. Non-blocking; a
// pending signal is enough.
func (l *Local) kick() {
	select {
	case l.refresh <- struct{}{}:
	default:
	}
}

// Run drives the scheduler until ctx is canceled.
func (l *Local) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		nextWake := l.fireDue()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if !nextWake.IsZero() {
			d := nextWake.Sub(l.now())
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
		}

		select {
		case <-ctx.Done():
			l.log.Info("local notifier stopping")
			return
		case <-l.refresh:
		case <-timer.C:
		}
	}
}

// fireDue delivers every due entry and returns the earliest remaining
// wake-up instant (zero when no entries are pending).
func (l *Local) fireDue() time.Time {
	now := l.now()

	l.mu.Lock()
	var due []*entry
	for _, e := range l.entries {
		if !e.next.After(now) {
			due = append(due, e)
		}
	}
	for _, e := range due {
		if e.trigger.Repeats {
			e.next = alarm.NextWeekdayOccurrence(e.trigger.Weekly, now)
		} else {
			delete(l.entries, e.id)
		}
	}
	var earliest time.Time
	for _, e := range l.entries {
		if earliest.IsZero() || e.next.Before(earliest) {
			earliest = e.next
		}
	}
	l.mu.Unlock()

	for _, e := range due {
		f := Firing{EntryID: e.id, At: now, Payload: e.payload}
		select {
		case l.firings <- f:
			l.log.Info("entry fired",
				zap.String("entry", e.id),
				zap.String("alarm", e.payload.AlarmID.String()),
			)
		default:
			// Consumer is wedged; dropping beats stalling the loop.
			l.log.Warn("firing dropped, consumer not keeping up", zap.String("entry", e.id))
		}
	}

	return earliest
}
