package game

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// FlipBackDelay is how long two mismatched cards stay face up before they
// revert. Clicks are blocked for the whole window.
const FlipBackDelay = time.Second

// Phase is the lifecycle stage of a game, derived from the engine state.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAwaitingFirst  Phase = "awaiting_first"
	PhaseAwaitingSecond Phase = "awaiting_second"
	PhaseResolving      Phase = "resolving"
	PhaseWon            Phase = "won"
)

// Snapshot is a consistent copy of the visible game state.
type Snapshot struct {
	Cards    []Card
	Flipped  []int
	Moves    int
	Elapsed  int
	Checking bool
	Over     bool
}

// Engine drives a single memory-match game: flip gating, pair resolution,
// the mismatch cooldown, move counting, win detection and the seconds timer.
// All methods are safe for concurrent use; the cooldown and timer callbacks
// run on their own goroutines.
type Engine struct {
	mu    sync.Mutex
	clock clockwork.Clock

	cards    []Card
	flipped  []int
	moves    int
	checking bool
	over     bool
	started  bool

	elapsed   int
	stopTimer chan struct{}
	stopOnce  sync.Once
}

// New builds an engine with a freshly shuffled deck. Pass nil to use the
// wall clock; tests inject a fake.
func New(gridSize int, clock clockwork.Clock) (*Engine, error) {
	cards, err := NewDeck(gridSize)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		clock:     clock,
		cards:     cards,
		flipped:   make([]int, 0, 2),
		stopTimer: make(chan struct{}),
	}, nil
}

// Start activates the board and begins counting whole seconds. The timer
// freezes (does not reset) once the game is won.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	ticker := e.clock.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-e.stopTimer:
				return
			case <-ticker.Chan():
				e.mu.Lock()
				if !e.over {
					e.elapsed++
				}
				e.mu.Unlock()
			}
		}
	}()
}

// Stop releases the timer goroutine. Safe to call more than once; a cooldown
// callback landing afterwards is harmless.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopTimer) })
}

// Flip turns the card at index face up. Blocked clicks are silently
// ignored: before Start, during resolution, after the win, on a card already
// face up or matched, or while two cards are pending.
func (e *Engine) Flip(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started || e.checking || e.over {
		return
	}
	if index < 0 || index >= len(e.cards) {
		return
	}
	card := &e.cards[index]
	if card.Flipped || card.Matched || len(e.flipped) >= 2 {
		return
	}

	card.Flipped = true
	e.flipped = append(e.flipped, index)

	if len(e.flipped) == 2 {
		e.resolve()
	}
}

// resolve compares the two pending cards. Caller holds the lock.
func (e *Engine) resolve() {
	e.moves++
	e.checking = true

	first, second := e.flipped[0], e.flipped[1]
	if e.cards[first].Icon == e.cards[second].Icon {
		e.cards[first].Matched = true
		e.cards[second].Matched = true
		e.flipped = e.flipped[:0]
		e.checking = false
		e.checkWin()
		return
	}

	e.clock.AfterFunc(FlipBackDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.cards[first].Flipped = false
		e.cards[second].Flipped = false
		e.flipped = e.flipped[:0]
		e.checking = false
	})
}

// checkWin flips the over flag once every card is matched. Caller holds the
// lock.
func (e *Engine) checkWin() {
	for i := range e.cards {
		if !e.cards[i].Matched {
			return
		}
	}
	e.over = true
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	cards := make([]Card, len(e.cards))
	copy(cards, e.cards)
	flipped := make([]int, len(e.flipped))
	copy(flipped, e.flipped)

	return Snapshot{
		Cards:    cards,
		Flipped:  flipped,
		Moves:    e.moves,
		Elapsed:  e.elapsed,
		Checking: e.checking,
		Over:     e.over,
	}
}

// Phase derives the lifecycle stage from the current state.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case !e.started:
		return PhaseIdle
	case e.over:
		return PhaseWon
	case e.checking:
		return PhaseResolving
	case len(e.flipped) == 1:
		return PhaseAwaitingSecond
	default:
		return PhaseAwaitingFirst
	}
}

// Moves returns how many pairs have been resolved so far.
func (e *Engine) Moves() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moves
}

// Elapsed returns the whole seconds counted since Start.
func (e *Engine) Elapsed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsed
}

// Over reports whether every card has been matched.
func (e *Engine) Over() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.over
}
