// Package notify defines the contract of the pending-firing scheduler the
// coordinator talks to, and an in-process implementation of it.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

// Payload is delivered back unchanged when an entry fires.
type Payload struct {
	AlarmID uuid.UUID
	Task    alarm.Task
}

// Trigger describes when an entry fires: either a single absolute instant, or
// a weekly weekday+time-of-day recurrence.
type Trigger struct {
	At      time.Time
	Weekly  alarm.WeekdayTime
	Repeats bool
}

// Once builds a one-shot trigger.
func Once(at time.Time) Trigger {
	return Trigger{At: at}
}

// EveryWeek builds a weekly recurring trigger.
func EveryWeek(w alarm.WeekdayTime) Trigger {
	return Trigger{Weekly: w, Repeats: true}
}

// Firing is one delivered alert.
type Firing struct {
	EntryID string
	At      time.Time
	Payload Payload
}

// Scheduler is the external notification collaborator. Implementations hold
// pending entries keyed by deterministic string ids; removal of a nonexistent
// entry is a no-op.
type Scheduler interface {
	RequestPermission(ctx context.Context) (bool, error)
	AddFiring(ctx context.Context, entryID string, trigger Trigger, payload Payload) error
	RemoveFiring(ctx context.Context, entryID string) error
	RemoveAllFirings(ctx context.Context) error
}

// EntryID returns the pending-entry id for a one-shot alarm: the bare alarm
// id string. The derivation must stay bit-exact; cancellation reconstructs
// ids instead of tracking them.
func EntryID(alarmID uuid.UUID) string {
	return alarmID.String()
}

// WeekdayEntryID returns the pending-entry id for one repeating weekday:
// "{alarmId}_{weekdayIndex}".
func WeekdayEntryID(alarmID uuid.UUID, weekday int) string {
	return fmt.Sprintf("%s_%d", alarmID, weekday)
}

// AllEntryIDs returns every id an alarm could possibly be scheduled under:
// the bare id plus all seven weekday suffixes.
func AllEntryIDs(alarmID uuid.UUID) []string {
	ids := make([]string, 0, 8)
	ids = append(ids, EntryID(alarmID))
	for d := 0; d < 7; d++ {
		ids = append(ids, WeekdayEntryID(alarmID, d))
	}
	return ids
}
