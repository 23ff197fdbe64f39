// Package schedule keeps the notification collaborator's pending entries in
// sync with each alarm's desired state.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/notify"
)

// Coordinator translates alarm records into schedule/cancel instructions.
// All operations on the same alarm id are serialized; distinct alarms proceed
// concurrently. Collaborator failures are logged, never propagated: the
// desired schedule is authoritative and re-applied on the next call.
type Coordinator struct {
	notifier notify.Scheduler
	log      *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	permMu    sync.Mutex
	granted   bool
	permAsked bool
}

// New creates a Coordinator over the given notifier.
func New(notifier notify.Scheduler, log *zap.Logger) *Coordinator {
	return &Coordinator{
		notifier: notifier,
		log:      log,
		now:      time.Now,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor returns the per-alarm mutex, creating it on first use.
func (c *Coordinator) lockFor(id uuid.UUID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	return l
}

// Schedule reconciles the alarm's pending entries: existing entries are
// blind-cancelled first, then re-created from the alarm's current state. An
// inactive alarm ends up with zero entries. Idempotent.
func (c *Coordinator) Schedule(ctx context.Context, a *alarm.Alarm) {
	l := c.lockFor(a.ID)
	l.Lock()
	defer l.Unlock()

	c.cancelLocked(ctx, a.ID)
	if !a.IsActive {
		return
	}

	c.ensurePermission(ctx)

	payload := notify.Payload{AlarmID: a.ID, Task: a.Task}
	if !a.Repeats() {
		at := alarm.NextOneShotFiring(a, c.now())
		if err := c.notifier.AddFiring(ctx, notify.EntryID(a.ID), notify.Once(at), payload); err != nil {
			c.log.Error("add one-shot firing failed",
				zap.Error(err), zap.String("alarm", a.ID.String()))
		}
		return
	}

	for _, w := range alarm.WeeklyFirings(a) {
		entryID := notify.WeekdayEntryID(a.ID, int(w.Weekday))
		if err := c.notifier.AddFiring(ctx, entryID, notify.EveryWeek(w), payload); err != nil {
			c.log.Error("add weekly firing failed",
				zap.Error(err), zap.String("entry", entryID))
		}
	}
}

// Reschedule must be called on every mutating edit so stale entries never
// persist. It is cancel-then-schedule.
func (c *Coordinator) Reschedule(ctx context.Context, a *alarm.Alarm) {
	c.Schedule(ctx, a)
}

// Cancel removes the bare entry and all seven weekday-suffixed entries for
// the id, regardless of which currently exist. Over-cancellation is safe.
func (c *Coordinator) Cancel(ctx context.Context, id uuid.UUID) {
	l := c.lockFor(id)
	l.Lock()
	defer l.Unlock()
	c.cancelLocked(ctx, id)
}

func (c *Coordinator) cancelLocked(ctx context.Context, id uuid.UUID) {
	for _, entryID := range notify.AllEntryIDs(id) {
		if err := c.notifier.RemoveFiring(ctx, entryID); err != nil {
			// A failed cancel of a stale entry must not block the new entry.
			c.log.Warn("remove firing failed",
				zap.Error(err), zap.String("entry", entryID))
		}
	}
}

// ensurePermission asks the notifier for delivery permission once. A denial
// gates real delivery but never blocks bookkeeping; it is surfaced as a
// warning and scheduling continues.
func (c *Coordinator) ensurePermission(ctx context.Context) {
	c.permMu.Lock()
	defer c.permMu.Unlock()
	if c.granted || c.permAsked {
		return
	}
	c.permAsked = true

	granted, err := c.notifier.RequestPermission(ctx)
	if err != nil {
		c.log.Warn("permission request failed", zap.Error(err))
		return
	}
	c.granted = granted
	if !granted {
		c.log.Warn("notification permission denied; alarms stay scheduled locally")
	}
}

// PermissionGranted reports the last known permission state. Used for the
// advisory banner.
func (c *Coordinator) PermissionGranted() bool {
	c.permMu.Lock()
	defer c.permMu.Unlock()
	return c.granted || !c.permAsked
}
