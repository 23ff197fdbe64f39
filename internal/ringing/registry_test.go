package ringing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

func registrySession(t *testing.T) (*Session, *fakePlayer) {
	t.Helper()
	a, err := alarm.New(uuid.New(), time.Now(), alarm.TaskBrushingTeeth, nil)
	require.NoError(t, err)
	player := &fakePlayer{}
	return NewSession(*a, player, &scriptedVerifier{player: player}, zap.NewNop()), player
}

func TestRegistry_ReplaceDismissesPrevious(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()

	first, firstPlayer := registrySession(t)
	first.Start()
	r.Put(owner, first)

	second, _ := registrySession(t)
	second.Start()
	r.Put(owner, second)

	require.Equal(t, StateDismissed, first.State())
	require.False(t, firstPlayer.IsPlaying())

	got, ok := r.Get(owner)
	require.True(t, ok)
	require.Same(t, second, got)
}

func TestRegistry_DismissAllStopsAudio(t *testing.T) {
	r := NewRegistry()

	s1, p1 := registrySession(t)
	s2, p2 := registrySession(t)
	s1.Start()
	s2.Start()
	r.Put(uuid.New(), s1)
	r.Put(uuid.New(), s2)

	r.DismissAll()

	require.False(t, p1.IsPlaying())
	require.False(t, p2.IsPlaying())
	_, ok := r.Get(uuid.New())
	require.False(t, ok)
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	owner := uuid.New()
	s, _ := registrySession(t)
	r.Put(owner, s)
	r.Remove(owner)
	_, ok := r.Get(owner)
	require.False(t, ok)
}
