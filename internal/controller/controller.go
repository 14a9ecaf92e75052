// Package controller sequences one wager from submit to settlement.
//
// A Controller instance drives one game. The cycle is strict:
//
//	validate -> submit (exactly one request) -> animate -> settle -> idle
//
// Local validation failures never reach the network. A successful response
// is folded into session balance, ledger and message only at settlement,
// after the reveal animation has run its minimum duration, so nothing on
// screen leaks the outcome early. At most one wager is in flight per game.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna-gaming/fortuna-desktop/internal/casino"
	"github.com/fortuna-gaming/fortuna-desktop/internal/games"
	"github.com/fortuna-gaming/fortuna-desktop/internal/ledger"
	"github.com/fortuna-gaming/fortuna-desktop/internal/notify"
	"github.com/fortuna-gaming/fortuna-desktop/internal/reveal"
	"github.com/fortuna-gaming/fortuna-desktop/internal/session"
	"github.com/fortuna-gaming/fortuna-desktop/internal/wager"
)

// ErrWagerInFlight is returned when a submit arrives while a previous
// wager has not settled yet.
var ErrWagerInFlight = errors.New("controller: wager already in flight")

// Placer submits a wager request. Implemented by *casino.Client.
type Placer interface {
	PlaceWager(ctx context.Context, game string, payload map[string]any) (*casino.Result, error)
}

// Recorder folds a settled wager into the local ledger. Implemented by
// *ledger.Ledger.
type Recorder interface {
	Append(game string, limit int, rec ledger.Record) ledger.Entry
}

// Deps carries the collaborators shared by all game controllers.
type Deps struct {
	Placer  Placer
	Ledger  Recorder
	Session *session.Manager
	Notices *notify.Presenter
	Reveal  reveal.Sink
	Log     zerolog.Logger

	// AnimSpeedup divides animation timings; 1 in production.
	AnimSpeedup int
}

// Outcome is what a settled wager produced, for the caller's benefit; the
// UI has already been updated through the sinks by the time it returns.
type Outcome struct {
	Entry   ledger.Entry `json:"entry"`
	Balance int64        `json:"balance"`
	Message string       `json:"message"`
}

// Controller runs the wager protocol for a single game.
type Controller struct {
	desc     games.Descriptor
	deps     Deps
	animator *reveal.Animator
	log      zerolog.Logger

	mu   sync.Mutex
	busy bool
}

// New creates an idle controller for the given game.
func New(desc games.Descriptor, deps Deps) *Controller {
	speedup := deps.AnimSpeedup
	if speedup < 1 {
		speedup = 1
	}
	cfg := reveal.Config{
		Game:         desc.Key,
		Duration:     desc.AnimDuration / time.Duration(speedup),
		TickInterval: desc.TickInterval / time.Duration(speedup),
		Decoy:        desc.Decoy,
	}
	return &Controller{
		desc:     desc,
		deps:     deps,
		animator: reveal.New(cfg, deps.Reveal),
		log:      deps.Log.With().Str("game", desc.Key).Logger(),
	}
}

// Game returns the descriptor this controller drives.
func (c *Controller) Game() games.Descriptor {
	return c.desc
}

// Busy reports whether a wager is currently in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Play runs one full wager cycle and blocks until it settles or fails.
// Validation is re-run on every call; a rejected wager touches neither the
// network nor the ledger.
func (c *Controller) Play(ctx context.Context, w games.Wager) (*Outcome, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrWagerInFlight
	}
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if rej := wager.Validate(wager.Input{
		Authenticated:  c.deps.Session.Authenticated(),
		ChoiceRequired: c.desc.RequiresChoice,
		ChoiceProvided: c.desc.HasChoice(w),
		Stake:          w.Stake,
		Balance:        c.deps.Session.Balance(),
		MinStake:       c.desc.MinStake,
	}); rej != nil {
		c.deps.Notices.Show(notify.LevelError, rej.Message)
		return nil, rej
	}

	body, err := c.desc.BuildRequest(w)
	if err != nil {
		c.deps.Notices.Show(notify.LevelError, "invalid wager, please check your bet")
		return nil, err
	}

	// A new attempt replaces whatever message is still on screen.
	c.deps.Notices.Clear()

	if err := c.animator.Start(ctx); err != nil {
		return nil, err
	}

	result, err := c.deps.Placer.PlaceWager(ctx, c.desc.Key, body)
	if err != nil {
		c.animator.Abort()
		return nil, c.failWager(err)
	}

	c.animator.Resolve(result.Outcome)

	// Settlement waits for BOTH the animation window and the result. If
	// the caller goes away mid-animation the authoritative result is
	// still folded in; only the remaining frames are dropped.
	select {
	case <-c.animator.Done():
	case <-ctx.Done():
		c.animator.Abort()
	}

	return c.settle(w, result), nil
}

// settle applies a confirmed result: balance first, then the ledger, then
// the message. All three reflect the same response.
func (c *Controller) settle(w games.Wager, result *casino.Result) *Outcome {
	balance := result.BalanceCredits()
	c.deps.Session.SetBalance(balance)

	var counters []string
	if c.desc.Counters != nil {
		counters = c.desc.Counters(result.Outcome)
	}
	entry := c.deps.Ledger.Append(c.desc.Key, c.desc.HistoryCap, ledger.Record{
		Outcome:  result.Outcome,
		Stake:    w.Stake,
		Payout:   result.PayoutCredits(),
		Won:      result.Won(),
		Counters: counters,
	})

	message := result.Message
	level := notify.LevelInfo
	if result.Won() {
		level = notify.LevelSuccess
		if message == "" {
			message = fmt.Sprintf("you won %d credits", result.PayoutCredits())
		}
	} else if message == "" {
		message = "better luck next time"
	}
	c.deps.Notices.Show(level, message)

	c.animator.Acknowledge()

	c.log.Info().
		Int64("stake", w.Stake).
		Int64("payout", entry.Payout).
		Bool("won", entry.Won).
		Int64("balance", balance).
		Msg("wager settled")

	return &Outcome{Entry: entry, Balance: balance, Message: message}
}

// failWager maps a request failure onto the session and the message area.
// The wager is over either way; nothing is recorded.
func (c *Controller) failWager(err error) error {
	var authErr *casino.AuthError
	if errors.As(err, &authErr) {
		c.deps.Session.Expire()
		c.deps.Notices.Show(notify.LevelError, "your session has expired, please sign in again")
		return err
	}

	var apiErr *casino.APIError
	if errors.As(err, &apiErr) {
		c.deps.Notices.Show(notify.LevelError, apiErr.Detail)
		return err
	}

	c.log.Warn().Err(err).Msg("wager request failed")
	c.deps.Notices.Show(notify.LevelError, "something went wrong, please try again")
	return err
}
