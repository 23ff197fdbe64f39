package alarm

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRepeatDay = errors.New("invalid repeat day")
	ErrUnknownTask      = errors.New("unknown task")
	ErrMissingOwner     = errors.New("missing owner id")
)

// Alarm is one alarm record. Only the hour/minute of Time is meaningful for
// recurrence; the originating date is discarded by the resolver.
type Alarm struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Time       time.Time
	Task       Task
	IsActive   bool
	RepeatDays []int // 0=Sunday..6=Saturday; empty means one-shot
	CreatedAt  time.Time
}

// New constructs an active alarm with a fresh id. repeatDays may be nil for a
// one-shot alarm.
func New(ownerID uuid.UUID, at time.Time, task Task, repeatDays []int) (*Alarm, error) {
	if ownerID == uuid.Nil {
		return nil, ErrMissingOwner
	}
	if !task.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	if err := ValidateRepeatDays(repeatDays); err != nil {
		return nil, err
	}
	return &Alarm{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Time:       at,
		Task:       task,
		IsActive:   true,
		RepeatDays: repeatDays,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ValidateRepeatDays rejects weekday indices outside [0,6] and duplicates.
func ValidateRepeatDays(days []int) error {
	var seen [7]bool
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: %d out of range", ErrInvalidRepeatDay, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: %d duplicated", ErrInvalidRepeatDay, d)
		}
		seen[d] = true
	}
	return nil
}

// Repeats reports whether the alarm has any repeat weekdays.
func (a *Alarm) Repeats() bool {
	return len(a.RepeatDays) > 0
}

// TimeString formats the alarm's time-of-day as HH:MM.
func (a *Alarm) TimeString() string {
	return a.Time.Format("15:04")
}
