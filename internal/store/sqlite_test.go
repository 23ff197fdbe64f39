package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "alarms.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestEnsureUser_StableMapping(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	first, err := repo.EnsureUser(ctx, 42)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first)

	again, err := repo.EnsureUser(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, first, again, "same chat must map to the same owner")

	other, err := repo.EnsureUser(ctx, 43)
	require.NoError(t, err)
	require.NotEqual(t, first, other)

	chat, err := repo.ChatForOwner(ctx, first)
	require.NoError(t, err)
	require.EqualValues(t, 42, chat)
}

func TestAlarmCRUDRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	owner, err := repo.EnsureUser(ctx, 1)
	require.NoError(t, err)

	at := time.Date(2025, time.October, 12, 7, 30, 0, 0, time.UTC)
	a, err := alarm.New(owner, at, alarm.TaskBrushingTeeth, []int{1, 2, 5})
	require.NoError(t, err)
	require.NoError(t, repo.InsertAlarm(ctx, a))

	got, err := repo.GetAlarm(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, owner, got.OwnerID)
	require.Equal(t, 7, got.Time.Hour())
	require.Equal(t, 30, got.Time.Minute())
	require.Equal(t, alarm.TaskBrushingTeeth, got.Task)
	require.Equal(t, []int{1, 2, 5}, got.RepeatDays)
	require.True(t, got.IsActive)

	got.IsActive = false
	got.RepeatDays = nil
	got.Task = alarm.TaskOpeningLaptop
	require.NoError(t, repo.UpdateAlarm(ctx, got))

	updated, err := repo.GetAlarm(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.Nil(t, updated.RepeatDays)
	require.Equal(t, alarm.TaskOpeningLaptop, updated.Task)

	require.NoError(t, repo.DeleteAlarm(ctx, a.ID))
	_, err = repo.GetAlarm(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListByOwnerAndActive(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	owner, err := repo.EnsureUser(ctx, 1)
	require.NoError(t, err)
	stranger, err := repo.EnsureUser(ctx, 2)
	require.NoError(t, err)

	mk := func(owner uuid.UUID, hh int, active bool) *alarm.Alarm {
		at := time.Date(2025, time.October, 12, hh, 0, 0, 0, time.UTC)
		a, err := alarm.New(owner, at, alarm.TaskOpeningLaptop, nil)
		require.NoError(t, err)
		a.IsActive = active
		require.NoError(t, repo.InsertAlarm(ctx, a))
		return a
	}

	mk(owner, 9, true)
	mk(owner, 6, false)
	mk(stranger, 7, true)

	mine, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 2, "list is scoped by owner")
	require.Equal(t, 6, mine[0].Time.Hour(), "ordered by time of day")

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
}

func TestUpsertAlarm_SyncDown(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	owner, err := repo.EnsureUser(ctx, 1)
	require.NoError(t, err)

	at := time.Date(2025, time.October, 12, 7, 0, 0, 0, time.UTC)
	a, err := alarm.New(owner, at, alarm.TaskBrushingTeeth, nil)
	require.NoError(t, err)

	require.NoError(t, repo.UpsertAlarm(ctx, a))
	a.IsActive = false
	require.NoError(t, repo.UpsertAlarm(ctx, a))

	got, err := repo.GetAlarm(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	all, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, all, 1, "upsert must not duplicate")
}

func TestUpdateMissingAlarm(t *testing.T) {
	repo := openTestRepo(t)
	a, err := alarm.New(uuid.New(), time.Now(), alarm.TaskBrushingTeeth, nil)
	require.NoError(t, err)
	require.ErrorIs(t, repo.UpdateAlarm(context.Background(), a), ErrNotFound)
}
