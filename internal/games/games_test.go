package games

import (
	"encoding/json"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	keys := []string{KeyCoinflip, KeyDice, KeySlots, KeyRoulette, KeyInvestment}
	for _, key := range keys {
		d, ok := Get(key)
		if !ok {
			t.Fatalf("Get(%q) missing", key)
		}
		if d.Key != key {
			t.Errorf("Get(%q).Key = %q", key, d.Key)
		}
		if d.HistoryCap < 10 || d.HistoryCap > 20 {
			t.Errorf("%s: history cap %d outside 10..20", key, d.HistoryCap)
		}
	}
	if _, ok := Get("blackjack"); ok {
		t.Error("Get returned a descriptor for an unknown key")
	}
	if got := len(All()); got != len(keys) {
		t.Errorf("All() returned %d descriptors, want %d", got, len(keys))
	}
}

func TestCoinflipBuildRequest(t *testing.T) {
	d, _ := Get(KeyCoinflip)

	body, err := d.BuildRequest(Wager{Stake: 100, Choice: "heads"})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if body["side"] != "heads" || body["stake"] != int64(100) {
		t.Errorf("body = %v", body)
	}

	if _, err := d.BuildRequest(Wager{Stake: 100, Choice: "edge"}); err == nil {
		t.Error("expected error for invalid side")
	}
}

func TestRouletteBuildRequest(t *testing.T) {
	d, _ := Get(KeyRoulette)

	w := Wager{
		Stake: 80,
		Bets: []RouletteBet{
			{Kind: "red", Amount: 50},
			{Kind: "dozen", Value: 1, Amount: 30},
		},
	}
	body, err := d.BuildRequest(w)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if body["stake"] != int64(80) {
		t.Errorf("stake = %v, want combined 80", body["stake"])
	}

	cases := []struct {
		name string
		w    Wager
	}{
		{"no bets", Wager{Stake: 10}},
		{"unknown kind", Wager{Stake: 10, Bets: []RouletteBet{{Kind: "corner", Amount: 10}}}},
		{"zero amount", Wager{Stake: 0, Bets: []RouletteBet{{Kind: "red", Amount: 0}}}},
		{"straight out of range", Wager{Stake: 10, Bets: []RouletteBet{{Kind: "straight", Value: 37, Amount: 10}}}},
		{"stake mismatch", Wager{Stake: 99, Bets: []RouletteBet{{Kind: "red", Amount: 50}}}},
	}
	for _, tc := range cases {
		if _, err := d.BuildRequest(tc.w); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestCombinedStake(t *testing.T) {
	w := Wager{Bets: []RouletteBet{
		{Kind: "red", Amount: 50},
		{Kind: "straight", Value: 17, Amount: 5},
		{Kind: "dozen", Value: 2, Amount: 25},
	}}
	if got := w.CombinedStake(); got != 80 {
		t.Errorf("CombinedStake = %d, want 80", got)
	}
}

func TestHasChoice(t *testing.T) {
	coin, _ := Get(KeyCoinflip)
	if coin.HasChoice(Wager{Stake: 10}) {
		t.Error("coinflip without a side should lack a choice")
	}
	if !coin.HasChoice(Wager{Stake: 10, Choice: "tails"}) {
		t.Error("coinflip with a side should have a choice")
	}

	roulette, _ := Get(KeyRoulette)
	if roulette.HasChoice(Wager{Stake: 10}) {
		t.Error("roulette without bets should lack a choice")
	}
	if !roulette.HasChoice(Wager{Stake: 10, Bets: []RouletteBet{{Kind: "red", Amount: 10}}}) {
		t.Error("roulette with bets should have a choice")
	}

	dice, _ := Get(KeyDice)
	if !dice.HasChoice(Wager{Stake: 10}) {
		t.Error("dice never requires a choice")
	}
}

func TestDiceCounters(t *testing.T) {
	d, _ := Get(KeyDice)

	if got := d.Counters(json.RawMessage(`{"dice":[4,4]}`)); len(got) != 1 || got[0] != "doubles" {
		t.Errorf("doubles roll counters = %v", got)
	}
	if got := d.Counters(json.RawMessage(`{"dice":[2,5]}`)); got != nil {
		t.Errorf("mixed roll counters = %v, want none", got)
	}
	if got := d.Counters(json.RawMessage(`not json`)); got != nil {
		t.Errorf("malformed outcome counters = %v, want none", got)
	}
}

func TestRouletteCounters(t *testing.T) {
	d, _ := Get(KeyRoulette)

	if got := d.Counters(json.RawMessage(`{"number":17,"color":"black"}`)); len(got) != 1 || got[0] != "number:17" {
		t.Errorf("counters = %v, want [number:17]", got)
	}
	if got := d.Counters(json.RawMessage(`{"number":0,"color":"green"}`)); len(got) != 1 || got[0] != "number:0" {
		t.Errorf("zero pocket counters = %v, want [number:0]", got)
	}
	if got := d.Counters(json.RawMessage(`{}`)); got != nil {
		t.Errorf("missing number counters = %v, want none", got)
	}
}

func TestPocketColor(t *testing.T) {
	cases := map[int]string{
		0:  "green",
		1:  "red",
		2:  "black",
		17: "black",
		32: "red",
		36: "red",
	}
	for n, want := range cases {
		if got := PocketColor(n); got != want {
			t.Errorf("PocketColor(%d) = %s, want %s", n, got, want)
		}
	}
}
