package game

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// waitFor polls cond until it holds or a real-time deadline passes. The
// cooldown and ticker callbacks run on their own goroutines, so state
// changes after a fake-clock advance are observed rather than assumed.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// pairAndOdd finds the indices of one matching pair plus a third card with a
// different icon.
func pairAndOdd(t *testing.T, e *Engine) (a, b, odd int) {
	t.Helper()
	snap := e.Snapshot()
	byIcon := make(map[string][]int)
	for _, c := range snap.Cards {
		byIcon[c.Icon] = append(byIcon[c.Icon], c.ID)
	}
	a, b = -1, -1
	for _, ids := range byIcon {
		if a == -1 {
			a, b = ids[0], ids[1]
		} else {
			return a, b, ids[0]
		}
	}
	t.Fatal("deck has fewer than two icons")
	return
}

func newStartedEngine(t *testing.T) (*Engine, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	e, err := New(4, clock)
	if err != nil {
		t.Fatal(err)
	}
	e.Start()
	clock.BlockUntil(1) // second timer registered
	t.Cleanup(e.Stop)
	return e, clock
}

func TestFlipBeforeStartIsIgnored(t *testing.T) {
	e, err := New(4, clockwork.NewFakeClock())
	if err != nil {
		t.Fatal(err)
	}
	e.Flip(0)
	if snap := e.Snapshot(); len(snap.Flipped) != 0 || snap.Cards[0].Flipped {
		t.Error("flip accepted before Start")
	}
	if got := e.Phase(); got != PhaseIdle {
		t.Errorf("phase = %s, want %s", got, PhaseIdle)
	}
}

func TestMatchResolvesImmediately(t *testing.T) {
	e, _ := newStartedEngine(t)
	a, b, _ := pairAndOdd(t, e)

	e.Flip(a)
	if got := e.Phase(); got != PhaseAwaitingSecond {
		t.Errorf("phase after first flip = %s, want %s", got, PhaseAwaitingSecond)
	}
	e.Flip(b)

	snap := e.Snapshot()
	if !snap.Cards[a].Matched || !snap.Cards[b].Matched {
		t.Error("matching pair not marked matched")
	}
	if snap.Checking {
		t.Error("checking still set after a match; no cooldown should elapse")
	}
	if len(snap.Flipped) != 0 {
		t.Errorf("flipped indices not cleared: %v", snap.Flipped)
	}
	if snap.Moves != 1 {
		t.Errorf("moves = %d, want 1", snap.Moves)
	}
}

func TestMismatchRevertsAfterCooldown(t *testing.T) {
	e, clock := newStartedEngine(t)
	a, _, odd := pairAndOdd(t, e)

	e.Flip(a)
	e.Flip(odd)

	snap := e.Snapshot()
	if !snap.Checking {
		t.Fatal("checking not set during mismatch resolution")
	}
	if snap.Moves != 1 {
		t.Errorf("moves = %d, want 1", snap.Moves)
	}
	if got := e.Phase(); got != PhaseResolving {
		t.Errorf("phase = %s, want %s", got, PhaseResolving)
	}

	clock.BlockUntil(2) // ticker + cooldown
	clock.Advance(FlipBackDelay)

	waitFor(t, "cooldown to clear", func() bool { return !e.Snapshot().Checking })
	snap = e.Snapshot()
	if snap.Cards[a].Flipped || snap.Cards[odd].Flipped {
		t.Error("mismatched cards still face up after cooldown")
	}
	if snap.Cards[a].Matched || snap.Cards[odd].Matched {
		t.Error("mismatched cards marked matched")
	}
	if len(snap.Flipped) != 0 {
		t.Errorf("flipped indices not cleared: %v", snap.Flipped)
	}
	if snap.Moves != 1 {
		t.Errorf("moves = %d after cooldown, want 1", snap.Moves)
	}
}

func TestThirdFlipBlockedDuringResolution(t *testing.T) {
	e, clock := newStartedEngine(t)
	a, b, odd := pairAndOdd(t, e)

	e.Flip(a)
	e.Flip(odd)
	e.Flip(b) // blocked: two cards pending resolution

	if snap := e.Snapshot(); snap.Cards[b].Flipped {
		t.Error("third flip accepted while two cards were pending")
	}

	clock.BlockUntil(2)
	clock.Advance(FlipBackDelay)
	waitFor(t, "cooldown to clear", func() bool { return !e.Snapshot().Checking })

	e.Flip(b)
	if snap := e.Snapshot(); !snap.Cards[b].Flipped {
		t.Error("flip rejected after resolution cleared")
	}
}

func TestMatchedCardsAreImmune(t *testing.T) {
	e, _ := newStartedEngine(t)
	a, b, _ := pairAndOdd(t, e)

	e.Flip(a)
	e.Flip(b)
	e.Flip(a)

	snap := e.Snapshot()
	if len(snap.Flipped) != 0 {
		t.Errorf("matched card accepted a flip: %v", snap.Flipped)
	}
	if !snap.Cards[a].Matched {
		t.Error("matched card lost its matched state")
	}
}

func TestWinDetectionAndTimerFreeze(t *testing.T) {
	e, clock := newStartedEngine(t)

	clock.Advance(time.Second)
	waitFor(t, "first tick", func() bool { return e.Elapsed() == 1 })
	clock.Advance(time.Second)
	waitFor(t, "second tick", func() bool { return e.Elapsed() == 2 })

	// Clear the whole board; every flip pair is an immediate match.
	byIcon := make(map[string][]int)
	for _, c := range e.Snapshot().Cards {
		byIcon[c.Icon] = append(byIcon[c.Icon], c.ID)
	}
	for _, ids := range byIcon {
		e.Flip(ids[0])
		e.Flip(ids[1])
	}

	if !e.Over() {
		t.Fatal("over not set after all cards matched")
	}
	if got := e.Phase(); got != PhaseWon {
		t.Errorf("phase = %s, want %s", got, PhaseWon)
	}
	if got := e.Moves(); got != len(byIcon) {
		t.Errorf("moves = %d, want %d", got, len(byIcon))
	}

	// Frozen, not reset: further time passing must not move the counter.
	clock.Advance(3 * time.Second)
	time.Sleep(10 * time.Millisecond)
	if got := e.Elapsed(); got != 2 {
		t.Errorf("elapsed moved to %d after the win, want 2", got)
	}

	// The board stays inert once won.
	e.Flip(0)
	if snap := e.Snapshot(); len(snap.Flipped) != 0 {
		t.Error("flip accepted after the game was won")
	}
}
