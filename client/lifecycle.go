package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// State is the one-shot initialization state of a score lifecycle. The
// explicit transitions replace the ad hoc "init attempted" flag older
// builds guarded re-renders with.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrNotReady         = errors.New("score lifecycle not initialized")
	ErrAlreadySubmitted = errors.New("score already submitted")
)

// ScoreLifecycle coordinates the two-phase score protocol for one game
// session: a single placeholder creation up front, a single finalize on win.
type ScoreLifecycle struct {
	mu sync.Mutex

	client   *Client
	logger   *slog.Logger
	token    string
	userID   uint
	gridSize int

	state     State
	scoreID   uint
	lastErr   error
	submitted bool
}

func NewScoreLifecycle(c *Client, identity *Identity, gridSize int) *ScoreLifecycle {
	return &ScoreLifecycle{
		client:   c,
		logger:   c.logger,
		token:    identity.Token,
		userID:   identity.UserID,
		gridSize: gridSize,
	}
}

// Init requests the placeholder score record. No matter how often the caller
// re-enters, at most one request is in flight and at most one succeeds:
// repeat calls return the existing score id (Ready), the retained error
// (Failed), or ErrNotReady while a call is still in flight. Reset re-arms a
// failed lifecycle for exactly one more attempt.
func (l *ScoreLifecycle) Init(ctx context.Context) (uint, error) {
	l.mu.Lock()
	switch l.state {
	case StateReady:
		id := l.scoreID
		l.mu.Unlock()
		return id, nil
	case StateFailed:
		err := l.lastErr
		l.mu.Unlock()
		return 0, err
	case StateInitializing:
		l.mu.Unlock()
		return 0, ErrNotReady
	}
	l.state = StateInitializing
	l.mu.Unlock()

	scoreID, err := l.client.InitScore(ctx, l.token, l.userID, l.gridSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state = StateFailed
		l.lastErr = err
		l.logger.Error("score init failed", "grid_size", l.gridSize, "error", err)
		return 0, err
	}
	l.state = StateReady
	l.scoreID = scoreID
	return scoreID, nil
}

// Reset re-arms a failed lifecycle. It has no effect in any other state, so
// a Ready session can never request a second placeholder.
func (l *ScoreLifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateFailed {
		l.state = StateUninitialized
		l.lastErr = nil
	}
}

// Finalize submits the final metrics for the placeholder obtained by Init.
// The submitted flag is taken optimistically before the request goes out;
// on failure it is cleared so the caller may retry, and the result values
// are never lost locally.
func (l *ScoreLifecycle) Finalize(ctx context.Context, timeSeconds, moves int) error {
	l.mu.Lock()
	if l.state != StateReady {
		l.mu.Unlock()
		return ErrNotReady
	}
	if l.submitted {
		l.mu.Unlock()
		return ErrAlreadySubmitted
	}
	l.submitted = true
	scoreID := l.scoreID
	l.mu.Unlock()

	_, err := l.client.FinalizeScore(ctx, l.token, scoreID, timeSeconds, moves)
	if err != nil {
		l.mu.Lock()
		l.submitted = false
		l.mu.Unlock()
		l.logger.Error("score finalize failed", "score_id", scoreID, "error", err)
		return err
	}
	return nil
}

// State returns the current lifecycle state.
func (l *ScoreLifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// ScoreID returns the placeholder id, valid only once Ready.
func (l *ScoreLifecycle) ScoreID() uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scoreID
}

// Submitted reports whether a finalize has been accepted (or is in flight).
func (l *ScoreLifecycle) Submitted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submitted
}
