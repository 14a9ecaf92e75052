// Package games defines the per-game parameters that vary between titles.
//
// Every game runs the same wager protocol; what differs is the shape of the
// request body, the outcome payload, the decoy animation and the history
// bookkeeping. A Descriptor captures exactly those differences so a single
// controller can drive all five titles.
package games

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// RouletteBet is one sub-bet inside a roulette batch. A submission may
// carry several heterogeneous bets aggregated into one request.
type RouletteBet struct {
	// Kind is one of: straight, red, black, even, odd, low, high,
	// dozen, column.
	Kind   string `json:"kind"`
	Value  int    `json:"value,omitempty"`
	Amount int64  `json:"amount"`
}

// Wager is a user-submitted bet before it goes over the wire.
type Wager struct {
	Stake  int64
	Choice string        // coinflip side; empty elsewhere
	Bets   []RouletteBet // roulette only
}

// CombinedStake sums the batch amounts for a roulette wager.
func (w Wager) CombinedStake() int64 {
	var total int64
	for _, b := range w.Bets {
		total += b.Amount
	}
	return total
}

// Descriptor parameterizes one game for the generic controller.
type Descriptor struct {
	Key        string
	Name       string
	MinStake   int64
	HistoryCap int

	// Animation shape. Duration zero means no animation at all.
	AnimDuration time.Duration
	TickInterval time.Duration

	// RequiresChoice marks games where the player must pick a selector
	// (a coin side, at least one roulette bet) before submitting.
	RequiresChoice bool

	// Decoy produces one display frame independent of any outcome.
	Decoy func(r *rand.Rand) any

	// BuildRequest turns a validated wager into the endpoint body.
	BuildRequest func(w Wager) (map[string]any, error)

	// Counters derives per-game statistic counter keys from an
	// authoritative outcome payload (e.g. doubles, number frequencies).
	// Nil for games without extra counters.
	Counters func(outcome json.RawMessage) []string
}

// HasChoice reports whether the wager carries the selector this game needs.
func (d Descriptor) HasChoice(w Wager) bool {
	if !d.RequiresChoice {
		return true
	}
	if d.Key == KeyRoulette {
		return len(w.Bets) > 0
	}
	return w.Choice != ""
}

const (
	KeyCoinflip   = "coinflip"
	KeyDice       = "dice"
	KeySlots      = "slots"
	KeyRoulette   = "roulette"
	KeyInvestment = "investment"
)

var slotSymbols = []string{"cherry", "lemon", "orange", "bell", "bar", "seven"}

// redNumbers holds the red pockets of a European wheel.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true, 27: true,
	30: true, 32: true, 34: true, 36: true,
}

// PocketColor returns the wheel color for a number in 0..36.
func PocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case redNumbers[n]:
		return "red"
	default:
		return "black"
	}
}

var rouletteBetKinds = map[string]bool{
	"straight": true, "red": true, "black": true, "even": true,
	"odd": true, "low": true, "high": true, "dozen": true, "column": true,
}

var registry = []Descriptor{
	{
		Key:            KeyCoinflip,
		Name:           "Coin Flip",
		MinStake:       10,
		HistoryCap:     10,
		AnimDuration:   2 * time.Second,
		TickInterval:   100 * time.Millisecond,
		RequiresChoice: true,
		Decoy: func(r *rand.Rand) any {
			if r.Intn(2) == 0 {
				return map[string]any{"side": "heads"}
			}
			return map[string]any{"side": "tails"}
		},
		BuildRequest: func(w Wager) (map[string]any, error) {
			if w.Choice != "heads" && w.Choice != "tails" {
				return nil, fmt.Errorf("games: coinflip side %q is not heads or tails", w.Choice)
			}
			return map[string]any{"stake": w.Stake, "side": w.Choice}, nil
		},
	},
	{
		Key:          KeyDice,
		Name:         "Dice",
		MinStake:     10,
		HistoryCap:   10,
		AnimDuration: 2 * time.Second,
		TickInterval: 100 * time.Millisecond,
		Decoy: func(r *rand.Rand) any {
			return map[string]any{"dice": []int{r.Intn(6) + 1, r.Intn(6) + 1}}
		},
		BuildRequest: func(w Wager) (map[string]any, error) {
			return map[string]any{"stake": w.Stake}, nil
		},
		Counters: func(outcome json.RawMessage) []string {
			var body struct {
				Dice []int `json:"dice"`
			}
			if err := json.Unmarshal(outcome, &body); err != nil || len(body.Dice) != 2 {
				return nil
			}
			if body.Dice[0] == body.Dice[1] {
				return []string{"doubles"}
			}
			return nil
		},
	},
	{
		Key:          KeySlots,
		Name:         "Slot Machine",
		MinStake:     20,
		HistoryCap:   15,
		AnimDuration: 2500 * time.Millisecond,
		TickInterval: 100 * time.Millisecond,
		Decoy: func(r *rand.Rand) any {
			reels := make([]string, 3)
			for i := range reels {
				reels[i] = slotSymbols[r.Intn(len(slotSymbols))]
			}
			return map[string]any{"reels": reels}
		},
		BuildRequest: func(w Wager) (map[string]any, error) {
			return map[string]any{"stake": w.Stake}, nil
		},
	},
	{
		Key:            KeyRoulette,
		Name:           "European Roulette",
		MinStake:       5,
		HistoryCap:     20,
		AnimDuration:   3 * time.Second,
		TickInterval:   100 * time.Millisecond,
		RequiresChoice: true,
		Decoy: func(r *rand.Rand) any {
			n := r.Intn(37)
			return map[string]any{"number": n, "color": PocketColor(n)}
		},
		BuildRequest: func(w Wager) (map[string]any, error) {
			if len(w.Bets) == 0 {
				return nil, fmt.Errorf("games: roulette wager has no bets")
			}
			for _, b := range w.Bets {
				if !rouletteBetKinds[b.Kind] {
					return nil, fmt.Errorf("games: unknown roulette bet kind %q", b.Kind)
				}
				if b.Amount <= 0 {
					return nil, fmt.Errorf("games: roulette bet %s has non-positive amount", b.Kind)
				}
				if b.Kind == "straight" && (b.Value < 0 || b.Value > 36) {
					return nil, fmt.Errorf("games: straight bet number %d out of range", b.Value)
				}
			}
			if got := w.CombinedStake(); got != w.Stake {
				return nil, fmt.Errorf("games: roulette stake %d does not match bet total %d", w.Stake, got)
			}
			return map[string]any{"stake": w.Stake, "bets": w.Bets}, nil
		},
		Counters: func(outcome json.RawMessage) []string {
			var body struct {
				Number *int `json:"number"`
			}
			if err := json.Unmarshal(outcome, &body); err != nil || body.Number == nil {
				return nil
			}
			return []string{fmt.Sprintf("number:%d", *body.Number)}
		},
	},
	{
		Key:        KeyInvestment,
		Name:       "Fixed-Yield Investment",
		MinStake:   100,
		HistoryCap: 10,
		// No spin: the result is shown as soon as it arrives.
		AnimDuration: 0,
		Decoy:        func(r *rand.Rand) any { return nil },
		BuildRequest: func(w Wager) (map[string]any, error) {
			return map[string]any{"stake": w.Stake}, nil
		},
	},
}

// All returns every game descriptor in display order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Get looks up a descriptor by key.
func Get(key string) (Descriptor, bool) {
	for _, d := range registry {
		if d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}
