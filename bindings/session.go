package bindings

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fortuna-gaming/fortuna-desktop/internal/casino"
	"github.com/fortuna-gaming/fortuna-desktop/internal/notify"
	"github.com/fortuna-gaming/fortuna-desktop/internal/session"
)

// SessionStatus is the frontend-facing view of the current session.
type SessionStatus struct {
	Authenticated bool             `json:"authenticated"`
	User          session.Snapshot `json:"user"`
}

// BonusResult reports a claimed daily bonus.
type BonusResult struct {
	Amount  int64  `json:"amount"`
	Balance int64  `json:"balance"`
	Message string `json:"message"`
}

// SessionModule exposes login, logout and session state to the frontend.
type SessionModule struct {
	client  *casino.Client
	sess    *session.Manager
	notices *notify.Presenter
	log     zerolog.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// NewSessionModule wires the session bindings.
func NewSessionModule(client *casino.Client, sess *session.Manager, notices *notify.Presenter, log zerolog.Logger) *SessionModule {
	return &SessionModule{client: client, sess: sess, notices: notices, log: log}
}

// Startup captures the wails context and tries to resume a persisted
// session from a previous launch.
func (m *SessionModule) Startup(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()

	token, ok := m.sess.Restore()
	if !ok {
		return
	}
	m.client.SetToken(token)

	profile, err := m.client.FetchProfile(ctx)
	if err != nil {
		m.log.Info().Err(err).Msg("persisted session no longer valid")
		m.client.SetToken("")
		m.sess.Logout()
		return
	}
	m.sess.Establish(token, snapshotOf(profile))
}

func (m *SessionModule) context() context.Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ctx != nil {
		return m.ctx
	}
	return context.Background()
}

// Login authenticates and establishes the session.
func (m *SessionModule) Login(username, password string) (session.Snapshot, error) {
	lr, err := m.client.Login(m.context(), username, password)
	if err != nil {
		var authErr *casino.AuthError
		if errors.As(err, &authErr) {
			m.notices.Show(notify.LevelError, "invalid username or password")
		} else {
			m.notices.Show(notify.LevelError, "something went wrong, please try again")
		}
		return session.Snapshot{}, err
	}

	snap := snapshotOf(&lr.Profile)
	m.sess.Establish(lr.Token, snap)
	return snap, nil
}

// Logout drops the session and credential.
func (m *SessionModule) Logout() {
	m.client.SetToken("")
	m.sess.Logout()
}

// Status returns the current session view.
func (m *SessionModule) Status() SessionStatus {
	snap, ok := m.sess.Snapshot()
	return SessionStatus{Authenticated: ok, User: snap}
}

// ClaimDailyBonus claims the once-per-day bonus. A repeat claim surfaces
// the backend's reason verbatim.
func (m *SessionModule) ClaimDailyBonus() (*BonusResult, error) {
	result, err := m.client.ClaimDailyBonus(m.context())
	if err != nil {
		var authErr *casino.AuthError
		if errors.As(err, &authErr) {
			m.sess.Expire()
			m.notices.Show(notify.LevelError, "your session has expired, please sign in again")
			return nil, err
		}
		var apiErr *casino.APIError
		if errors.As(err, &apiErr) {
			m.notices.Show(notify.LevelError, apiErr.Detail)
			return nil, err
		}
		m.notices.Show(notify.LevelError, "something went wrong, please try again")
		return nil, err
	}

	balance := result.BalanceCredits()
	m.sess.SetBalance(balance)

	message := result.Message
	if message == "" {
		message = "daily bonus claimed"
	}
	m.notices.Show(notify.LevelSuccess, message)

	return &BonusResult{
		Amount:  result.PayoutCredits(),
		Balance: balance,
		Message: message,
	}, nil
}

func snapshotOf(p *casino.Profile) session.Snapshot {
	return session.Snapshot{
		ID:                  p.ID,
		Username:            p.Username,
		Balance:             p.Balance.IntPart(),
		Verified:            p.Verified,
		PendingVerification: p.PendingVerification,
	}
}
