// Package demoserver is an in-memory casino backend for offline
// development and integration tests. It speaks the same HTTP contract the
// desktop client consumes: bearer-token auth, per-game wager endpoints,
// profile and daily-bonus routes, and error bodies with a "detail" string.
//
// It is deliberately not a production service: users live in a map, the
// RNG is process-local, and nothing survives a restart.
package demoserver

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type user struct {
	ID                  string
	Username            string
	Password            string
	Balance             int64
	Verified            bool
	PendingVerification bool
	LastBonusDay        string // "2006-01-02", empty if never claimed
}

// Server is the demo backend.
type Server struct {
	log zerolog.Logger
	now func() time.Time

	mu       sync.Mutex
	users    map[string]*user  // by ID
	sessions map[string]string // token -> user ID
	rng      *rand.Rand
	// seen caches responses by wager identifier so a replayed request
	// cannot charge twice.
	seen map[string]playResponse
}

// Option adjusts a Server at construction.
type Option func(*Server)

// WithRand injects a deterministic RNG for tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Server) { s.rng = r }
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a demo backend with one seeded player account
// (username "ana", password "fortuna", balance 1000).
func NewServer(log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		log:      log,
		now:      time.Now,
		users:    map[string]*user{},
		sessions: map[string]string{},
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		seen:     map[string]playResponse{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.users["u1"] = &user{
		ID:       "u1",
		Username: "ana",
		Password: "fortuna",
		Balance:  1000,
		Verified: true,
	}
	return s
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/profile", s.handleProfile)
			r.Post("/bonus/daily", s.handleDailyBonus)
			r.Post("/games/{game}", s.handlePlay)
		})
	})
	return r
}

type ctxKey int

const userKey ctxKey = 0

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "session invalid")
			return
		}

		s.mu.Lock()
		id, ok := s.sessions[token]
		s.mu.Unlock()
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "session invalid")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), id)))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileBody struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	Balance             int64  `json:"balance"`
	Verified            bool   `json:"verified"`
	PendingVerification bool   `json:"pendingVerification"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed login request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == req.Username && u.Password == req.Password {
			token := uuid.NewString()
			s.sessions[token] = u.ID
			s.log.Info().Str("user", u.Username).Msg("login")
			s.writeJSON(w, http.StatusOK, map[string]any{
				"token":   token,
				"profile": profileOf(u),
			})
			return
		}
	}
	s.writeError(w, http.StatusUnauthorized, "invalid username or password")
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[userFromContext(r.Context())]
	body := profileOf(u)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, body)
}

const dailyBonusAmount = 500

func (s *Server) handleDailyBonus(w http.ResponseWriter, r *http.Request) {
	today := s.now().Format("2006-01-02")

	s.mu.Lock()
	u := s.users[userFromContext(r.Context())]
	if u.LastBonusDay == today {
		s.mu.Unlock()
		s.writeError(w, http.StatusBadRequest, "bonus already claimed today")
		return
	}
	u.LastBonusDay = today
	u.Balance += dailyBonusAmount
	balance := u.Balance
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, playResponse{
		Outcome:    json.RawMessage(`{"bonus":true}`),
		Payout:     dailyBonusAmount,
		NewBalance: balance,
		Message:    "daily bonus claimed",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn().Err(err).Msg("encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func profileOf(u *user) profileBody {
	return profileBody{
		ID:                  u.ID,
		Username:            u.Username,
		Balance:             u.Balance,
		Verified:            u.Verified,
		PendingVerification: u.PendingVerification,
	}
}
