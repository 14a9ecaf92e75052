// Package wager validates candidate wagers before any network request is made.
//
// Validation is pure and synchronous: it inspects the stake, the player's
// current balance snapshot and the game's requirements, and either accepts
// the wager or rejects it with a priority-ordered reason. It is re-run on
// every submit attempt and never cached.
package wager

import "fmt"

// Reason identifies why a wager was rejected. Reasons are checked in a fixed
// priority order: authentication first, then selection, then stake bounds.
type Reason string

const (
	ReasonNotAuthenticated  Reason = "not_authenticated"
	ReasonChoiceMissing     Reason = "choice_missing"
	ReasonStakeBelowMinimum Reason = "stake_below_minimum"
	ReasonInsufficientFunds Reason = "insufficient_funds"
)

// Rejection is a failed validation. It carries a user-presentable message.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("wager rejected (%s): %s", r.Reason, r.Message)
}

// Input is everything the validator needs to judge a wager.
type Input struct {
	Authenticated  bool
	ChoiceRequired bool
	ChoiceProvided bool
	Stake          int64
	Balance        int64
	MinStake       int64
}

// Validate checks a candidate wager and returns nil when it may be submitted,
// or a *Rejection describing the highest-priority failure.
func Validate(in Input) *Rejection {
	if !in.Authenticated {
		return &Rejection{
			Reason:  ReasonNotAuthenticated,
			Message: "you must be signed in to play",
		}
	}
	if in.ChoiceRequired && !in.ChoiceProvided {
		return &Rejection{
			Reason:  ReasonChoiceMissing,
			Message: "pick an option before betting",
		}
	}
	if in.Stake < in.MinStake {
		return &Rejection{
			Reason:  ReasonStakeBelowMinimum,
			Message: fmt.Sprintf("minimum bet is %d credits", in.MinStake),
		}
	}
	if in.Stake > in.Balance {
		return &Rejection{
			Reason:  ReasonInsufficientFunds,
			Message: "insufficient funds for this bet",
		}
	}
	return nil
}
