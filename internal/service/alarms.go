// Package service implements alarm CRUD with an optimistic, local-first
// discipline: mutations commit to the local store and the schedule
// coordinator immediately; remote sync happens in the background and its
// failures are advisory only.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/store"
)

const syncTimeout = 10 * time.Second

// Scheduler is the slice of the schedule coordinator the service needs.
type Scheduler interface {
	Schedule(ctx context.Context, a *alarm.Alarm)
	Reschedule(ctx context.Context, a *alarm.Alarm)
	Cancel(ctx context.Context, id uuid.UUID)
	PermissionGranted() bool
}

// Remote is the hosted backend collaborator. May be absent (nil) for
// local-only operation.
type Remote interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]alarm.Alarm, error)
	Create(ctx context.Context, a *alarm.Alarm) (*alarm.Alarm, error)
	Update(ctx context.Context, a *alarm.Alarm) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Alarms is the alarm CRUD service.
type Alarms struct {
	repo   store.Repo
	coord  Scheduler
	remote Remote
	log    *zap.Logger

	mu       sync.Mutex
	advisory string

	wg sync.WaitGroup
}

// New creates the service. remote may be nil.
func New(repo store.Repo, coord Scheduler, remote Remote, log *zap.Logger) *Alarms {
	return &Alarms{repo: repo, coord: coord, remote: remote, log: log}
}

// Create validates and stores a new alarm, schedules its firings, and kicks
// off a background remote sync. The alarm is returned as soon as the local
// commit succeeds; a sync failure never takes it back.
func (s *Alarms) Create(ctx context.Context, ownerID uuid.UUID, at time.Time, task alarm.Task, repeatDays []int) (*alarm.Alarm, error) {
	a, err := alarm.New(ownerID, at, task, repeatDays)
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertAlarm(ctx, a); err != nil {
		return nil, err
	}

	s.coord.Schedule(ctx, a)

	s.background(func(ctx context.Context) error {
		_, err := s.remote.Create(ctx, a)
		return err
	}, "alarm created locally, remote sync failed")

	return a, nil
}

// Update overwrites an alarm's mutable fields, reconciles its pending
// entries, and syncs in the background.
func (s *Alarms) Update(ctx context.Context, a *alarm.Alarm) error {
	if err := alarm.ValidateRepeatDays(a.RepeatDays); err != nil {
		return err
	}
	if err := s.repo.UpdateAlarm(ctx, a); err != nil {
		return err
	}

	s.coord.Reschedule(ctx, a)

	s.background(func(ctx context.Context) error {
		return s.remote.Update(ctx, a)
	}, "alarm updated locally, remote sync failed")

	return nil
}

// Toggle flips IsActive and applies the update.
func (s *Alarms) Toggle(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error) {
	a, err := s.repo.GetAlarm(ctx, id)
	if err != nil {
		return nil, err
	}
	a.IsActive = !a.IsActive
	if err := s.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete cancels all pending firings, removes the local record, and deletes
// remotely in the background.
func (s *Alarms) Delete(ctx context.Context, id uuid.UUID) error {
	s.coord.Cancel(ctx, id)
	if err := s.repo.DeleteAlarm(ctx, id); err != nil {
		return err
	}

	s.background(func(ctx context.Context) error {
		return s.remote.Delete(ctx, id)
	}, "alarm deleted locally, remote sync failed")

	return nil
}

// List returns the owner's alarms from the local authoritative store.
func (s *Alarms) List(ctx context.Context, ownerID uuid.UUID) ([]alarm.Alarm, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns one alarm by id.
func (s *Alarms) Get(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error) {
	return s.repo.GetAlarm(ctx, id)
}

// SyncDown pulls the owner's remote records into the local store. Failure is
// advisory: the local state keeps serving.
func (s *Alarms) SyncDown(ctx context.Context, ownerID uuid.UUID) {
	if s.remote == nil {
		return
	}
	remote, err := s.remote.List(ctx, ownerID)
	if err != nil {
		s.noteSyncFailure("remote fetch failed, showing local alarms", err)
		return
	}
	for i := range remote {
		if err := s.repo.UpsertAlarm(ctx, &remote[i]); err != nil {
			s.log.Error("sync-down upsert failed",
				zap.Error(err), zap.String("alarm", remote[i].ID.String()))
			continue
		}
		s.coord.Schedule(ctx, &remote[i])
	}
}

// RestoreSchedules re-derives pending entries for every active alarm. The
// local desired state is authoritative; this runs at boot.
func (s *Alarms) RestoreSchedules(ctx context.Context) error {
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	for i := range active {
		s.coord.Schedule(ctx, &active[i])
	}
	s.log.Info("schedules restored", zap.Int("alarms", len(active)))
	return nil
}

// PermissionGranted reports the coordinator's delivery-permission state. A
// denial is a persistent condition, surfaced on every reply until resolved,
// unlike the one-shot sync advisory.
func (s *Alarms) PermissionGranted() bool {
	return s.coord.PermissionGranted()
}

// Advisory returns the latest non-fatal sync warning and clears it.
func (s *Alarms) Advisory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.advisory
	s.advisory = ""
	return msg
}

func (s *Alarms) noteSyncFailure(msg string, err error) {
	s.log.Warn(msg, zap.Error(err))
	s.mu.Lock()
	s.advisory = fmt.Sprintf("%s: %v", msg, err)
	s.mu.Unlock()
}

// background runs one remote sync attempt detached from the caller's
// context. No automatic retry: the next explicit action re-attempts.
func (s *Alarms) background(fn func(ctx context.Context) error, failMsg string) {
	if s.remote == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.noteSyncFailure(failMsg, err)
		}
	}()
}

// Wait blocks until in-flight background syncs finish. Used on shutdown and
// in tests.
func (s *Alarms) Wait() {
	s.wg.Wait()
}
