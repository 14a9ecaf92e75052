package bindings

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fortuna-gaming/fortuna-desktop/internal/casino"
	"github.com/fortuna-gaming/fortuna-desktop/internal/controller"
	"github.com/fortuna-gaming/fortuna-desktop/internal/games"
	"github.com/fortuna-gaming/fortuna-desktop/internal/ledger"
	"github.com/fortuna-gaming/fortuna-desktop/internal/notify"
	"github.com/fortuna-gaming/fortuna-desktop/internal/session"
)

// GameInfo describes one game for the frontend's navigation and forms.
type GameInfo struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	MinStake       int64  `json:"minStake"`
	HistoryCap     int    `json:"historyCap"`
	RequiresChoice bool   `json:"requiresChoice"`
}

// GamesModule exposes the wager protocol and the local ledger to the
// frontend. The controllers are created in Startup once the ledger store
// is open.
type GamesModule struct {
	client  *casino.Client
	sess    *session.Manager
	notices *notify.Presenter
	bridge  *EventBridge
	log     zerolog.Logger
	speedup int

	mu          sync.RWMutex
	ctx         context.Context
	ledger      *ledger.Ledger
	controllers map[string]*controller.Controller
}

// NewGamesModule wires the game bindings.
func NewGamesModule(client *casino.Client, sess *session.Manager, notices *notify.Presenter, bridge *EventBridge, log zerolog.Logger, speedup int) *GamesModule {
	return &GamesModule{
		client:  client,
		sess:    sess,
		notices: notices,
		bridge:  bridge,
		log:     log,
		speedup: speedup,
	}
}

// configure builds one controller per game around the opened ledger.
func (m *GamesModule) configure(ctx context.Context, led *ledger.Ledger) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ctx = ctx
	m.ledger = led
	m.controllers = make(map[string]*controller.Controller)
	for _, desc := range games.All() {
		m.controllers[desc.Key] = controller.New(desc, controller.Deps{
			Placer:      m.client,
			Ledger:      led,
			Session:     m.sess,
			Notices:     m.notices,
			Reveal:      m.bridge,
			Log:         m.log,
			AnimSpeedup: m.speedup,
		})
	}
}

func (m *GamesModule) controller(key string) (*controller.Controller, context.Context, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctrl, ok := m.controllers[key]
	if !ok {
		return nil, nil, fmt.Errorf("bindings: game %q not available", key)
	}
	return ctrl, m.ctx, nil
}

// ListGames returns the available games for navigation.
func (m *GamesModule) ListGames() []GameInfo {
	all := games.All()
	out := make([]GameInfo, 0, len(all))
	for _, d := range all {
		out = append(out, GameInfo{
			Key:            d.Key,
			Name:           d.Name,
			MinStake:       d.MinStake,
			HistoryCap:     d.HistoryCap,
			RequiresChoice: d.RequiresChoice,
		})
	}
	return out
}

func (m *GamesModule) play(key string, w games.Wager) (*controller.Outcome, error) {
	ctrl, ctx, err := m.controller(key)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return ctrl.Play(ctx, w)
}

// PlayCoinflip wagers on a coin side ("heads" or "tails").
func (m *GamesModule) PlayCoinflip(stake int64, side string) (*controller.Outcome, error) {
	return m.play(games.KeyCoinflip, games.Wager{Stake: stake, Choice: side})
}

// PlayDice rolls two dice.
func (m *GamesModule) PlayDice(stake int64) (*controller.Outcome, error) {
	return m.play(games.KeyDice, games.Wager{Stake: stake})
}

// PlaySlots spins the reels.
func (m *GamesModule) PlaySlots(stake int64) (*controller.Outcome, error) {
	return m.play(games.KeySlots, games.Wager{Stake: stake})
}

// PlayRoulette submits a batch of sub-bets as one wager whose stake is the
// combined amount.
func (m *GamesModule) PlayRoulette(bets []games.RouletteBet) (*controller.Outcome, error) {
	w := games.Wager{Bets: bets}
	w.Stake = w.CombinedStake()
	return m.play(games.KeyRoulette, w)
}

// PlayInvestment places the fixed-yield product.
func (m *GamesModule) PlayInvestment(stake int64) (*controller.Outcome, error) {
	return m.play(games.KeyInvestment, games.Wager{Stake: stake})
}

func (m *GamesModule) ledgerFor(game string) (*ledger.Ledger, error) {
	if _, ok := games.Get(game); !ok {
		return nil, fmt.Errorf("bindings: game %q not available", game)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ledger == nil {
		return nil, fmt.Errorf("bindings: ledger not ready")
	}
	return m.ledger, nil
}

// History returns the newest-first recent results for a game.
func (m *GamesModule) History(game string) ([]ledger.Entry, error) {
	led, err := m.ledgerFor(game)
	if err != nil {
		return nil, err
	}
	return led.History(game), nil
}

// Statistics returns the cumulative statistics for a game.
func (m *GamesModule) Statistics(game string) (ledger.Cumulative, error) {
	led, err := m.ledgerFor(game)
	if err != nil {
		return ledger.Cumulative{}, err
	}
	return led.Cumulative(game), nil
}

// ClearHistory empties a game's recent-results list; statistics survive.
func (m *GamesModule) ClearHistory(game string) error {
	led, err := m.ledgerFor(game)
	if err != nil {
		return err
	}
	led.ResetHistory(game)
	return nil
}

// ResetStatistics wipes both the history and the cumulative statistics.
func (m *GamesModule) ResetStatistics(game string) error {
	led, err := m.ledgerFor(game)
	if err != nil {
		return err
	}
	led.ResetAll(game)
	return nil
}
