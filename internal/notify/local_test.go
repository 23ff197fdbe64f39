package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

func TestEntryIDDerivation(t *testing.T) {
	id := uuid.MustParse("6f1c0e9a-8b4d-4c6e-9f2a-1d3b5a7c9e0f")

	if got := EntryID(id); got != "6f1c0e9a-8b4d-4c6e-9f2a-1d3b5a7c9e0f" {
		t.Fatalf("bare id wrong: %s", got)
	}
	if got := WeekdayEntryID(id, 3); got != "6f1c0e9a-8b4d-4c6e-9f2a-1d3b5a7c9e0f_3" {
		t.Fatalf("weekday id wrong: %s", got)
	}

	all := AllEntryIDs(id)
	if len(all) != 8 {
		t.Fatalf("want bare + 7 weekday ids, got %d", len(all))
	}
	if all[0] != EntryID(id) {
		t.Fatalf("first id must be bare, got %s", all[0])
	}
	for d := 0; d < 7; d++ {
		if all[d+1] != WeekdayEntryID(id, d) {
			t.Fatalf("id %d wrong: %s", d, all[d+1])
		}
	}
}

func TestLocal_OneShotFiresOnceAndIsConsumed(t *testing.T) {
	l := NewLocal(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	payload := Payload{AlarmID: uuid.New(), Task: alarm.TaskBrushingTeeth}
	if err := l.AddFiring(ctx, EntryID(payload.AlarmID), Once(time.Now().Add(30*time.Millisecond)), payload); err != nil {
		t.Fatalf("add: %v", err)
	}

	select {
	case f := <-l.Firings():
		if f.Payload.AlarmID != payload.AlarmID || f.Payload.Task != payload.Task {
			t.Fatalf("payload did not round-trip: %+v", f.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot entry never fired")
	}

	if got := l.Pending(); len(got) != 0 {
		t.Fatalf("one-shot entry must be consumed, still pending: %v", got)
	}
}

func TestLocal_WeeklyEntryRearms(t *testing.T) {
	l := NewLocal(zap.NewNop())
	id := uuid.New()

	w := alarm.WeekdayTime{Weekday: time.Now().Weekday(), Hour: 0, Minute: 0}
	if err := l.AddFiring(context.Background(), WeekdayEntryID(id, int(w.Weekday)), EveryWeek(w), Payload{AlarmID: id}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Without Run the entry just sits there; it must survive a manual sweep
	// because its next occurrence is in the future.
	if next := l.fireDue(); next.IsZero() {
		t.Fatal("weekly entry must keep a wake-up time")
	}
	if got := l.Pending(); len(got) != 1 {
		t.Fatalf("weekly entry must stay pending, got %v", got)
	}
}

func TestLocal_RemoveUnknownIsNoop(t *testing.T) {
	l := NewLocal(zap.NewNop())
	if err := l.RemoveFiring(context.Background(), "nope"); err != nil {
		t.Fatalf("remove of unknown id must be a no-op, got %v", err)
	}
}

func TestLocal_RemoveAll(t *testing.T) {
	l := NewLocal(zap.NewNop())
	ctx := context.Background()
	id := uuid.New()
	_ = l.AddFiring(ctx, EntryID(id), Once(time.Now().Add(time.Hour)), Payload{AlarmID: id})
	_ = l.AddFiring(ctx, WeekdayEntryID(id, 1), EveryWeek(alarm.WeekdayTime{Weekday: time.Monday, Hour: 6}), Payload{AlarmID: id})

	if err := l.RemoveAllFirings(ctx); err != nil {
		t.Fatalf("remove all: %v", err)
	}
	if got := l.Pending(); len(got) != 0 {
		t.Fatalf("entries remain after RemoveAllFirings: %v", got)
	}
}

func TestLocal_AddRejectsEmptyTrigger(t *testing.T) {
	l := NewLocal(zap.NewNop())
	if err := l.AddFiring(context.Background(), "x", Trigger{}, Payload{}); err == nil {
		t.Fatal("empty trigger must be rejected")
	}
}
