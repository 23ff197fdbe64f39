package alarm

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNew_Defaults(t *testing.T) {
	owner := uuid.New()
	a, err := New(owner, time.Now(), TaskOpeningLaptop, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a.ID == uuid.Nil {
		t.Fatal("id not assigned")
	}
	if !a.IsActive {
		t.Fatal("new alarm must start active")
	}
	if a.Repeats() {
		t.Fatal("nil repeat days must mean one-shot")
	}
}

func TestNew_Rejections(t *testing.T) {
	owner := uuid.New()

	if _, err := New(uuid.Nil, time.Now(), TaskBrushingTeeth, nil); !errors.Is(err, ErrMissingOwner) {
		t.Fatalf("want ErrMissingOwner, got %v", err)
	}
	if _, err := New(owner, time.Now(), Task("juggling"), nil); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("want ErrUnknownTask, got %v", err)
	}
	if _, err := New(owner, time.Now(), TaskBrushingTeeth, []int{7}); !errors.Is(err, ErrInvalidRepeatDay) {
		t.Fatalf("want ErrInvalidRepeatDay for 7, got %v", err)
	}
	if _, err := New(owner, time.Now(), TaskBrushingTeeth, []int{-1}); !errors.Is(err, ErrInvalidRepeatDay) {
		t.Fatalf("want ErrInvalidRepeatDay for -1, got %v", err)
	}
	if _, err := New(owner, time.Now(), TaskBrushingTeeth, []int{2, 2}); !errors.Is(err, ErrInvalidRepeatDay) {
		t.Fatalf("want ErrInvalidRepeatDay for duplicate, got %v", err)
	}
}

func TestValidateRepeatDays_FullWeek(t *testing.T) {
	if err := ValidateRepeatDays([]int{0, 1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("full week must be legal: %v", err)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("07:30", time.UTC)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Hour() != 7 || got.Minute() != 30 {
		t.Fatalf("want 07:30, got %02d:%02d", got.Hour(), got.Minute())
	}

	for _, bad := range []string{"", "730", "24:00", "12:60", "aa:bb"} {
		if _, err := ParseTimeOfDay(bad, time.UTC); err == nil {
			t.Fatalf("%q should not parse", bad)
		}
	}
}

func TestParseRepeatDays(t *testing.T) {
	got, err := ParseRepeatDays("1, 2,3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected days: %v", got)
	}

	if days, err := ParseRepeatDays(""); err != nil || days != nil {
		t.Fatalf("empty input must mean one-shot, got %v %v", days, err)
	}
	if _, err := ParseRepeatDays("1,8"); !errors.Is(err, ErrInvalidRepeatDay) {
		t.Fatalf("want ErrInvalidRepeatDay, got %v", err)
	}
}

func TestTaskVerificationLabels(t *testing.T) {
	for _, task := range Tasks() {
		if !task.Valid() {
			t.Fatalf("task %q must be valid", task)
		}
		if len(task.VerificationLabels()) == 0 {
			t.Fatalf("task %q has no verification labels", task)
		}
	}
	if Task("juggling").Valid() {
		t.Fatal("unknown task must be invalid")
	}
}
