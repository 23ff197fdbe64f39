// Package ringing runs one firing of an alarm: the audio loop plus the
// photo-verification gate that dismisses it.
package ringing

import (
	"context"
	"errors"

	"sync"

	"go.uber.org/zap"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
	"github.com/NikhilKonkimalla/snooze-u-looze/internal/audio"
)

// State of a ringing session.
type State int

const (
	StateIdle State = iota
	StateRinging
	StateVerifying
	StateDismissed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRinging:
		return "ringing"
	case StateVerifying:
		return "verifying"
	case StateDismissed:
		return "dismissed"
	}
	return "unknown"
}

var (
	// ErrSessionOver is returned for captures submitted after dismissal.
	ErrSessionOver = errors.New("session already dismissed")
	// ErrNotRinging is returned when a capture arrives while another one is
	// still being verified, or before the session started.
	ErrNotRinging = errors.New("session is not ringing")
)

// Verifier is the slice of the verification collaborator the session needs.
type Verifier interface {
	Verify(ctx context.Context, task alarm.Task, image []byte) (bool, error)
}

// Session is the state machine for one firing instance. Dismissed is
// terminal; a fresh firing gets a fresh session.
type Session struct {
	log      *zap.Logger
	player   audio.Player
	verifier Verifier

	mu    sync.Mutex
	state State
	alarm alarm.Alarm
}

// NewSession creates an idle session for one fired alarm.
func NewSession(a alarm.Alarm, player audio.Player, verifier Verifier, log *zap.Logger) *Session {
	return &Session{log: log, player: player, verifier: verifier, state: StateIdle, alarm: a}
}

// Alarm returns the alarm this session rings for.
func (s *Session) Alarm() alarm.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alarm
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start moves Idle to Ringing and begins the audio loop. No-op in any other
// state.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return
	}
	s.state = StateRinging
	s.player.Start()
	s.log.Info("alarm ringing",
		zap.String("alarm", s.alarm.ID.String()),
		zap.String("task", string(s.alarm.Task)),
	)
}

// SubmitCapture verifies one photo. The audio loop keeps playing while the
// verifier runs. A positive match dismisses the session and stops the audio;
// a mismatch or verifier error returns the session to Ringing, ready for the
// next attempt. There is no retry limit.
func (s *Session) SubmitCapture(ctx context.Context, image []byte) (bool, error) {
	s.mu.Lock()
	switch s.state {
	case StateDismissed:
		s.mu.Unlock()
		return false, ErrSessionOver
	case StateRinging:
		s.state = StateVerifying
	default:
		s.mu.Unlock()
		return false, ErrNotRinging
	}
	task := s.alarm.Task
	s.mu.Unlock()

	ok, err := s.verifier.Verify(ctx, task, image)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDismissed {
		// Overridden while verifying; nothing left to do.
		return false, ErrSessionOver
	}

	if err != nil {
		// Verification errors count as a failed attempt, never a crash.
		s.state = StateRinging
		s.log.Warn("verification errored, still ringing", zap.Error(err))
		return false, err
	}
	if !ok {
		s.state = StateRinging
		return false, nil
	}

	s.state = StateDismissed
	s.player.Stop()
	s.log.Info("alarm dismissed by verification", zap.String("alarm", s.alarm.ID.String()))
	return true, nil
}

// Dismiss forces the session to Dismissed from any state and stops the
// audio synchronously. The override path for local recovery; idempotent.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDismissed {
		return
	}
	s.state = StateDismissed
	s.player.Stop()
	s.log.Info("alarm dismissed by override", zap.String("alarm", s.alarm.ID.String()))
}
