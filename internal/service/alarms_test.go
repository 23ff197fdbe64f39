package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/store"
)

// recordingScheduler counts coordinator calls.
type recordingScheduler struct {
	mu          sync.Mutex
	scheduled   []uuid.UUID
	rescheduled []uuid.UUID
	cancelled   []uuid.UUID
	permDenied  bool
}

func (r *recordingScheduler) Schedule(ctx context.Context, a *alarm.Alarm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, a.ID)
}

func (r *recordingScheduler) Reschedule(ctx context.Context, a *alarm.Alarm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rescheduled = append(r.rescheduled, a.ID)
}

func (r *recordingScheduler) Cancel(ctx context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, id)
}

func (r *recordingScheduler) PermissionGranted() bool {
	return !r.permDenied
}

// flakyRemote fails every call when down.
type flakyRemote struct {
	down    bool
	records []alarm.Alarm // served by List when up

	mu      sync.Mutex
	creates int
	updates int
	deletes int
}

var errRemoteDown = errors.New("backend unreachable")

func (f *flakyRemote) List(ctx context.Context, ownerID uuid.UUID) ([]alarm.Alarm, error) {
	if f.down {
		return nil, errRemoteDown
	}
	return f.records, nil
}

func (f *flakyRemote) Create(ctx context.Context, a *alarm.Alarm) (*alarm.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.down {
		return nil, errRemoteDown
	}
	return a, nil
}

func (f *flakyRemote) Update(ctx context.Context, a *alarm.Alarm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.down {
		return errRemoteDown
	}
	return nil
}

func (f *flakyRemote) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.down {
		return errRemoteDown
	}
	return nil
}

func newTestService(t *testing.T, remote Remote) (*Alarms, *recordingScheduler, store.Repo, uuid.UUID) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "alarms.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	owner, err := repo.EnsureUser(context.Background(), 7)
	require.NoError(t, err)

	sched := &recordingScheduler{}
	return New(repo, sched, remote, zap.NewNop()), sched, repo, owner
}

func TestCreate_CommitsLocallyAndSchedules(t *testing.T) {
	remote := &flakyRemote{}
	svc, sched, repo, owner := newTestService(t, remote)
	ctx := context.Background()

	a, err := svc.Create(ctx, owner, time.Date(2025, 10, 12, 7, 30, 0, 0, time.UTC), alarm.TaskBrushingTeeth, nil)
	require.NoError(t, err)
	svc.Wait()

	stored, err := repo.GetAlarm(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, stored.ID)
	require.Equal(t, []uuid.UUID{a.ID}, sched.scheduled)
	require.Equal(t, 1, remote.creates)
	require.Empty(t, svc.Advisory())
}

func TestCreate_SyncFailureIsAdvisoryOnly(t *testing.T) {
	remote := &flakyRemote{down: true}
	svc, sched, repo, owner := newTestService(t, remote)
	ctx := context.Background()

	a, err := svc.Create(ctx, owner, time.Now(), alarm.TaskOpeningLaptop, []int{1, 2})
	require.NoError(t, err, "local create must succeed while backend is down")
	svc.Wait()

	// Alarm stays locally functional.
	stored, err := repo.GetAlarm(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, stored.IsActive)
	require.Len(t, sched.scheduled, 1)

	advisory := svc.Advisory()
	require.Contains(t, advisory, "sync failed")
	require.Empty(t, svc.Advisory(), "advisory is cleared after being read")
}

func TestCreate_RejectsBadRepeatDays(t *testing.T) {
	svc, sched, _, owner := newTestService(t, nil)

	_, err := svc.Create(context.Background(), owner, time.Now(), alarm.TaskBrushingTeeth, []int{9})
	require.ErrorIs(t, err, alarm.ErrInvalidRepeatDay)
	require.Empty(t, sched.scheduled, "validation failures never reach the coordinator")
}

func TestToggle_FlipsAndReschedules(t *testing.T) {
	svc, sched, repo, owner := newTestService(t, nil)
	ctx := context.Background()

	a, err := svc.Create(ctx, owner, time.Now(), alarm.TaskBrushingTeeth, nil)
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)

	stored, err := repo.GetAlarm(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)
	require.Equal(t, []uuid.UUID{a.ID}, sched.rescheduled)

	toggled, err = svc.Toggle(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, toggled.IsActive)
}

func TestDelete_CancelsBeforeRemoval(t *testing.T) {
	remote := &flakyRemote{down: true}
	svc, sched, repo, owner := newTestService(t, remote)
	ctx := context.Background()

	a, err := svc.Create(ctx, owner, time.Now(), alarm.TaskBrushingTeeth, []int{3})
	require.NoError(t, err)
	svc.Wait()
	svc.Advisory() // drain the create advisory

	require.NoError(t, svc.Delete(ctx, a.ID))
	svc.Wait()

	require.Equal(t, []uuid.UUID{a.ID}, sched.cancelled)
	_, err = repo.GetAlarm(ctx, a.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Contains(t, svc.Advisory(), "deleted locally")
}

func TestRestoreSchedules_OnlyActiveAlarms(t *testing.T) {
	svc, sched, _, owner := newTestService(t, nil)
	ctx := context.Background()

	active, err := svc.Create(ctx, owner, time.Now(), alarm.TaskBrushingTeeth, nil)
	require.NoError(t, err)
	inactive, err := svc.Create(ctx, owner, time.Now(), alarm.TaskOpeningLaptop, nil)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, inactive.ID)
	require.NoError(t, err)

	sched.mu.Lock()
	sched.scheduled = nil
	sched.mu.Unlock()

	require.NoError(t, svc.RestoreSchedules(ctx))
	require.Equal(t, []uuid.UUID{active.ID}, sched.scheduled)
}

func TestSyncDown_PullsAndSchedules(t *testing.T) {
	pulled, err := alarm.New(uuid.New(), time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC), alarm.TaskOpeningLaptop, nil)
	require.NoError(t, err)
	remote := &flakyRemote{records: []alarm.Alarm{*pulled}}
	svc, sched, repo, _ := newTestService(t, remote)
	ctx := context.Background()

	svc.SyncDown(ctx, pulled.OwnerID)

	stored, err := repo.GetAlarm(ctx, pulled.ID)
	require.NoError(t, err)
	require.Equal(t, pulled.Task, stored.Task)
	require.Contains(t, sched.scheduled, pulled.ID, "pulled alarms get scheduled")
	require.Empty(t, svc.Advisory())
}

func TestSyncDown_FailureKeepsLocalState(t *testing.T) {
	remote := &flakyRemote{down: true}
	svc, _, repo, owner := newTestService(t, remote)
	ctx := context.Background()

	a, err := svc.Create(ctx, owner, time.Now(), alarm.TaskBrushingTeeth, nil)
	require.NoError(t, err)
	svc.Wait()
	svc.Advisory() // drain the create advisory

	svc.SyncDown(ctx, owner)

	stored, err := repo.GetAlarm(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, stored.ID, "local alarms survive a failed fetch")
	require.Contains(t, svc.Advisory(), "remote fetch failed")
}
