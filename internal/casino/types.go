package casino

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Result is the backend's authoritative settlement of one wager. It is
// immutable once received: the UI must eventually display exactly this
// outcome and the ledger must record exactly these amounts. Nothing in it
// is ever recomputed or guessed locally.
type Result struct {
	// Outcome is the game-specific payload (coin side, die faces, reel
	// symbols, winning number, plan yield). Callers decode it with the
	// game's codec.
	Outcome json.RawMessage `json:"outcome"`

	Payout     decimal.Decimal `json:"payout"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Message    string          `json:"message"`
}

// PayoutCredits returns the payout as whole credits.
func (r *Result) PayoutCredits() int64 {
	return r.Payout.IntPart()
}

// BalanceCredits returns the new balance as whole credits.
func (r *Result) BalanceCredits() int64 {
	return r.NewBalance.IntPart()
}

// Won reports whether the wager paid anything.
func (r *Result) Won() bool {
	return r.Payout.IsPositive()
}

// Profile is the cached user snapshot supplied by the session bootstrap.
type Profile struct {
	ID                  string          `json:"id"`
	Username            string          `json:"username"`
	Balance             decimal.Decimal `json:"balance"`
	Verified            bool            `json:"verified"`
	PendingVerification bool            `json:"pendingVerification"`
}

// errorBody is the backend's error envelope; detail is surfaced verbatim.
type errorBody struct {
	Detail string `json:"detail"`
}
