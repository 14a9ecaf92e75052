// Package ledger keeps the per-game local play record: a bounded recent
// history and an unbounded cumulative statistics aggregate.
//
// The ledger mirrors server-confirmed results for display; it is never
// authoritative for money. Both aggregates live in memory and are persisted
// best-effort to a key-value store on every mutation. A persistence failure
// degrades the ledger to memory-only for the rest of the session — it is
// never surfaced to the player and never fatal.
package ledger

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna-gaming/fortuna-desktop/internal/kvstore"
)

const keyPrefix = "fortuna"

// Entry is one settled wager in the recent history, newest first.
type Entry struct {
	ID       int64           `json:"id"`
	Outcome  json.RawMessage `json:"outcome"`
	Stake    int64           `json:"stake"`
	Payout   int64           `json:"payout"`
	Won      bool            `json:"won"`
	PlayedAt string          `json:"playedAt"`
}

// Cumulative is the lifetime aggregate for one game. Net is always
// TotalPaid - TotalWagered after every mutation.
type Cumulative struct {
	GamesPlayed  int64            `json:"gamesPlayed"`
	Wins         int64            `json:"wins"`
	Losses       int64            `json:"losses"`
	TotalWagered int64            `json:"totalWagered"`
	TotalPaid    int64            `json:"totalPaid"`
	Net          int64            `json:"net"`
	Counters     map[string]int64 `json:"counters,omitempty"`
}

// Record is the input for a single settled wager.
type Record struct {
	Outcome json.RawMessage
	Stake   int64
	Payout  int64
	Won     bool
	// Counters lists game-specific counter keys to increment by one
	// (e.g. "doubles", "number:17").
	Counters []string
}

// Ledger owns history and cumulative statistics for every game, keyed by a
// per-game storage namespace. All mutations happen on the UI event path, so
// a single mutex is enough.
type Ledger struct {
	mu    sync.Mutex
	store kvstore.Store
	log   zerolog.Logger

	history  map[string][]Entry
	stats    map[string]*Cumulative
	hydrated map[string]bool

	degraded bool
	lastID   int64
	now      func() time.Time
}

// New creates a ledger over the given store.
func New(store kvstore.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store:    store,
		log:      log,
		history:  make(map[string][]Entry),
		stats:    make(map[string]*Cumulative),
		hydrated: make(map[string]bool),
		now:      time.Now,
	}
}

func historyKey(game string) string { return keyPrefix + ":" + game + ":history" }
func statsKey(game string) string   { return keyPrefix + ":" + game + ":stats" }

// History returns the recent history for game, newest first. The first call
// per game hydrates from the store; a missing or malformed value is treated
// as an empty history.
func (l *Ledger) History(game string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hydrateLocked(game)

	out := make([]Entry, len(l.history[game]))
	copy(out, l.history[game])
	return out
}

// Cumulative returns the lifetime statistics for game, all-zero when the
// game has never been played on this install.
func (l *Ledger) Cumulative(game string) Cumulative {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hydrateLocked(game)

	snap := *l.stats[game]
	if len(l.stats[game].Counters) > 0 {
		snap.Counters = make(map[string]int64, len(l.stats[game].Counters))
		for k, v := range l.stats[game].Counters {
			snap.Counters[k] = v
		}
	}
	return snap
}

// Append prepends a settled wager to the history (truncating to limit) and
// folds it into the cumulative statistics. Both aggregates are updated under
// one lock before any persistence happens, so a read in this process never
// observes one without the other.
func (l *Ledger) Append(game string, limit int, rec Record) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hydrateLocked(game)

	entry := Entry{
		ID:       l.nextIDLocked(),
		Outcome:  rec.Outcome,
		Stake:    rec.Stake,
		Payout:   rec.Payout,
		Won:      rec.Won,
		PlayedAt: l.now().Format("15:04:05"),
	}

	hist := append([]Entry{entry}, l.history[game]...)
	if limit > 0 && len(hist) > limit {
		hist = hist[:limit]
	}
	l.history[game] = hist

	st := l.stats[game]
	st.GamesPlayed++
	if rec.Won {
		st.Wins++
	} else {
		st.Losses++
	}
	st.TotalWagered += rec.Stake
	st.TotalPaid += rec.Payout
	st.Net = st.TotalPaid - st.TotalWagered
	for _, key := range rec.Counters {
		if st.Counters == nil {
			st.Counters = make(map[string]int64)
		}
		st.Counters[key]++
	}

	l.persistLocked(game)
	return entry
}

// ResetHistory clears the recent history only; cumulative statistics are
// untouched. This is the lightweight clear offered in the UI.
func (l *Ledger) ResetHistory(game string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hydrateLocked(game)

	l.history[game] = nil
	l.persistLocked(game)
}

// ResetAll returns the game's ledger to its zero state. Calling it twice is
// the same as calling it once.
func (l *Ledger) ResetAll(game string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hydrateLocked(game)

	l.history[game] = nil
	l.stats[game] = &Cumulative{}
	l.persistLocked(game)
}

// nextIDLocked derives a monotonically increasing identifier from the
// creation timestamp. Two settles inside one millisecond still get
// distinct, increasing ids.
func (l *Ledger) nextIDLocked() int64 {
	id := l.now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}

func (l *Ledger) hydrateLocked(game string) {
	if l.hydrated[game] {
		return
	}
	l.hydrated[game] = true
	l.history[game] = nil
	l.stats[game] = &Cumulative{}

	if raw, ok, err := l.store.Get(historyKey(game)); err == nil && ok {
		var hist []Entry
		if err := json.Unmarshal([]byte(raw), &hist); err != nil {
			// Malformed cache is discarded, not fatal.
			l.log.Warn().Str("game", game).Err(err).Msg("discarding malformed history cache")
		} else {
			l.history[game] = hist
		}
	}

	if raw, ok, err := l.store.Get(statsKey(game)); err == nil && ok {
		var st Cumulative
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			l.log.Warn().Str("game", game).Err(err).Msg("discarding malformed stats cache")
		} else {
			st.Net = st.TotalPaid - st.TotalWagered
			l.stats[game] = &st
		}
	}
}

// persistLocked writes both aggregates for game. On the first write failure
// the ledger goes memory-only for the rest of the session.
func (l *Ledger) persistLocked(game string) {
	if l.degraded {
		return
	}

	histJSON, err := json.Marshal(l.history[game])
	if err == nil {
		err = l.store.Put(historyKey(game), string(histJSON))
	}
	if err == nil {
		var statsJSON []byte
		statsJSON, err = json.Marshal(l.stats[game])
		if err == nil {
			err = l.store.Put(statsKey(game), string(statsJSON))
		}
	}
	if err != nil {
		l.degraded = true
		l.log.Warn().Str("game", game).Err(err).
			Msg("ledger persistence failed; continuing in memory only")
	}
}
