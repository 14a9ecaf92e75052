// Package reveal drives the game-result reveal animation.
//
// An Animator is a time-bounded state machine: while Animating it emits
// decoy display frames at a fixed tick cadence, drawn independently of the
// authoritative outcome so the animation carries no information about the
// result. It settles — displays the real outcome — only once BOTH the
// minimum animation duration has elapsed AND the authoritative result has
// been provided. If the backend is slower than the animation window, the
// animator keeps cycling decoys until the result arrives. It never reveals
// a decoy as final and never reveals the outcome early.
package reveal

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// State is the animator's lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateAnimating State = "animating"
	StateSettled   State = "settled"
)

// Sink receives display updates. In the app this is the UI event bridge;
// tests use a recording fake.
type Sink interface {
	// RevealFrame shows a decoy value while the animation runs.
	RevealFrame(game string, frame any)
	// RevealSettled commits the display to the authoritative outcome.
	RevealSettled(game string, outcome any)
}

// Config parameterizes one animator.
type Config struct {
	Game string

	// Duration is the minimum time the animation runs before it may
	// settle. Zero means settle as soon as the result arrives (used by
	// games with no spin, like the investment product).
	Duration time.Duration

	// TickInterval is the decoy frame cadence. Defaults to 100ms.
	TickInterval time.Duration

	// Decoy produces one display frame. It must not depend on the
	// authoritative outcome.
	Decoy func(r *rand.Rand) any
}

// Animator runs one reveal cycle at a time.
type Animator struct {
	cfg  Config
	sink Sink

	mu       sync.Mutex
	state    State
	outcome  any
	resolved bool
	cancel   context.CancelFunc
	done     chan struct{}
	rng      *rand.Rand
}

// New creates an idle animator.
func New(cfg Config, sink Sink) *Animator {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	return &Animator{
		cfg:   cfg,
		sink:  sink,
		state: StateIdle,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// State returns the current state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Done is closed when the animator settles. It is reset by Start.
func (a *Animator) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// Start begins a reveal cycle. It is an error to start while a cycle is in
// flight or an unacknowledged result is on screen.
func (a *Animator) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateIdle {
		return fmt.Errorf("reveal: cannot start while %s", a.state)
	}

	a.state = StateAnimating
	a.resolved = false
	a.outcome = nil
	a.done = make(chan struct{})

	if a.cfg.Duration <= 0 {
		// No animation: settle happens inside Resolve.
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	go a.run(runCtx, time.Now())
	return nil
}

// Resolve hands the animator the authoritative outcome. The outcome is
// displayed only when the minimum duration has also elapsed.
func (a *Animator) Resolve(outcome any) {
	a.mu.Lock()
	a.resolved = true
	a.outcome = outcome

	// Zero-duration animators settle the moment the result lands.
	instant := a.cfg.Duration <= 0 && a.state == StateAnimating
	if instant {
		a.settleLocked()
	}
	a.mu.Unlock()

	if instant {
		a.sink.RevealSettled(a.cfg.Game, outcome)
	}
}

// Abort stops the cycle without settling. Used when the wager was rejected
// or the controller is torn down mid-animation; no further frames are
// emitted afterwards.
func (a *Animator) Abort() {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.state == StateAnimating {
		a.state = StateIdle
	}
	a.resolved = false
	a.outcome = nil
	a.mu.Unlock()
}

// Acknowledge returns a settled animator to idle, ready for the next wager.
func (a *Animator) Acknowledge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateSettled {
		a.state = StateIdle
	}
}

// settleLocked flips to Settled and releases waiters. Caller holds a.mu.
func (a *Animator) settleLocked() {
	a.state = StateSettled
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	close(a.done)
}

// run is the tick loop. Each tick either settles (both gates open) or emits
// one more decoy frame. The loop exits on settle or cancellation.
func (a *Animator) run(ctx context.Context, started time.Time) {
	ticker := time.NewTicker(a.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.mu.Lock()
			if a.state != StateAnimating {
				a.mu.Unlock()
				return
			}
			if now.Sub(started) >= a.cfg.Duration && a.resolved {
				outcome := a.outcome
				a.settleLocked()
				a.mu.Unlock()
				a.sink.RevealSettled(a.cfg.Game, outcome)
				return
			}
			// The frame goes out under the lock: once Abort has
			// returned, no further frames reach the sink.
			a.sink.RevealFrame(a.cfg.Game, a.cfg.Decoy(a.rng))
			a.mu.Unlock()
		}
	}
}
