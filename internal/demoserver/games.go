package demoserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func contextWithUser(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey, id)
}

func userFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userKey).(string)
	return id
}

type playRequest struct {
	Identifier string `json:"identifier"`
	Stake      int64  `json:"stake"`
	Side       string `json:"side,omitempty"`
	Bets       []struct {
		Kind   string `json:"kind"`
		Value  int    `json:"value"`
		Amount int64  `json:"amount"`
	} `json:"bets,omitempty"`
}

type playResponse struct {
	Outcome    json.RawMessage `json:"outcome"`
	Payout     int64           `json:"payout"`
	NewBalance int64           `json:"newBalance"`
	Message    string          `json:"message,omitempty"`
}

var slotReel = []string{"cherry", "lemon", "orange", "bell", "bar", "seven"}

var slotTriplePayout = map[string]int64{
	"seven": 50, "bar": 25, "bell": 15,
	"orange": 10, "lemon": 10, "cherry": 10,
}

var redPockets = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true,
	16: true, 18: true, 19: true, 21: true, 23: true, 25: true, 27: true,
	30: true, 32: true, 34: true, 36: true,
}

func pocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case redPockets[n]:
		return "red"
	default:
		return "black"
	}
}

const investmentYieldPercent = 8

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")

	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed wager request")
		return
	}
	if req.Stake <= 0 {
		s.writeError(w, http.StatusBadRequest, "stake must be positive")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A replayed identifier returns the original settlement instead of
	// charging the player again.
	if req.Identifier != "" {
		if cached, ok := s.seen[req.Identifier]; ok {
			s.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	u := s.users[userFromContext(r.Context())]
	if req.Stake > u.Balance {
		s.writeError(w, http.StatusBadRequest, "insufficient funds")
		return
	}

	outcome, payout, err := s.resolveLocked(game, req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u.Balance = u.Balance - req.Stake + payout
	resp := playResponse{
		Outcome:    outcome,
		Payout:     payout,
		NewBalance: u.Balance,
	}
	if req.Identifier != "" {
		s.seen[req.Identifier] = resp
	}

	s.log.Info().
		Str("game", game).
		Str("user", u.Username).
		Int64("stake", req.Stake).
		Int64("payout", payout).
		Msg("wager resolved")
	s.writeJSON(w, http.StatusOK, resp)
}

// resolveLocked draws an outcome and computes the payout. Caller holds s.mu.
func (s *Server) resolveLocked(game string, req playRequest) (json.RawMessage, int64, error) {
	switch game {
	case "coinflip":
		if req.Side != "heads" && req.Side != "tails" {
			return nil, 0, fmt.Errorf("side must be heads or tails")
		}
		side := "tails"
		if s.rng.Intn(2) == 0 {
			side = "heads"
		}
		var payout int64
		if side == req.Side {
			payout = req.Stake * 2
		}
		return mustJSON(map[string]any{"side": side}), payout, nil

	case "dice":
		a, b := s.rng.Intn(6)+1, s.rng.Intn(6)+1
		var payout int64
		switch {
		case a == b:
			payout = req.Stake * 5
		case a+b == 7 || a+b == 11:
			payout = req.Stake * 2
		}
		return mustJSON(map[string]any{"dice": []int{a, b}}), payout, nil

	case "slots":
		reels := []string{
			slotReel[s.rng.Intn(len(slotReel))],
			slotReel[s.rng.Intn(len(slotReel))],
			slotReel[s.rng.Intn(len(slotReel))],
		}
		var payout int64
		switch {
		case reels[0] == reels[1] && reels[1] == reels[2]:
			payout = req.Stake * slotTriplePayout[reels[0]]
		case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
			payout = req.Stake * 2
		}
		return mustJSON(map[string]any{"reels": reels}), payout, nil

	case "roulette":
		if len(req.Bets) == 0 {
			return nil, 0, fmt.Errorf("roulette wager needs at least one bet")
		}
		var total int64
		for _, b := range req.Bets {
			if b.Amount <= 0 {
				return nil, 0, fmt.Errorf("bet amounts must be positive")
			}
			total += b.Amount
		}
		if total != req.Stake {
			return nil, 0, fmt.Errorf("stake does not match bet total")
		}

		n := s.rng.Intn(37)
		var payout int64
		for _, b := range req.Bets {
			payout += rouletteBetPayout(b.Kind, b.Value, b.Amount, n)
		}
		return mustJSON(map[string]any{"number": n, "color": pocketColor(n)}), payout, nil

	case "investment":
		payout := req.Stake + req.Stake*investmentYieldPercent/100
		return mustJSON(map[string]any{"yield": investmentYieldPercent}), payout, nil

	default:
		return nil, 0, fmt.Errorf("unknown game %q", game)
	}
}

// rouletteBetPayout returns the total returned for one sub-bet (stake
// included) when the wheel lands on n.
func rouletteBetPayout(kind string, value int, amount int64, n int) int64 {
	switch kind {
	case "straight":
		if n == value {
			return amount * 36
		}
	case "red":
		if pocketColor(n) == "red" {
			return amount * 2
		}
	case "black":
		if pocketColor(n) == "black" {
			return amount * 2
		}
	case "even":
		if n != 0 && n%2 == 0 {
			return amount * 2
		}
	case "odd":
		if n%2 == 1 {
			return amount * 2
		}
	case "low":
		if n >= 1 && n <= 18 {
			return amount * 2
		}
	case "high":
		if n >= 19 && n <= 36 {
			return amount * 2
		}
	case "dozen":
		if n != 0 && (n-1)/12+1 == value {
			return amount * 3
		}
	case "column":
		if n != 0 && (n-1)%3+1 == value {
			return amount * 3
		}
	}
	return 0
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
