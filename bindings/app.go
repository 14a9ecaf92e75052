package bindings

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fortuna-gaming/fortuna-desktop/internal/casino"
	"github.com/fortuna-gaming/fortuna-desktop/internal/config"
	"github.com/fortuna-gaming/fortuna-desktop/internal/kvstore"
	"github.com/fortuna-gaming/fortuna-desktop/internal/ledger"
	"github.com/fortuna-gaming/fortuna-desktop/internal/notify"
	"github.com/fortuna-gaming/fortuna-desktop/internal/session"
)

// App owns the wiring between the wails shell and the domain packages.
// Construction is cheap and infallible where possible; the ledger store is
// opened in Startup once the app lifecycle begins.
type App struct {
	cfg config.Config
	log zerolog.Logger

	Bridge  *EventBridge
	Session *SessionModule
	Games   *GamesModule

	client  *casino.Client
	sess    *session.Manager
	notices *notify.Presenter
	store   *kvstore.SQLiteStore
}

// New builds the application graph from the environment.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, lerr := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if lerr != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	bridge := &EventBridge{}
	client := casino.NewClient(casino.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
	})
	tokens := session.NewKeyringStore("fortuna-desktop", cfg.SecretsFallbackPath())
	sess := session.NewManager(tokens, log)
	notices := notify.New(bridge, cfg.NoticeTTL)

	sess.OnExpired(func() {
		client.SetToken("")
		bridge.SessionExpired()
	})

	app := &App{
		cfg:     cfg,
		log:     log,
		Bridge:  bridge,
		client:  client,
		sess:    sess,
		notices: notices,
	}
	app.Session = NewSessionModule(client, sess, notices, log)
	app.Games = NewGamesModule(client, sess, notices, bridge, log, cfg.AnimSpeedup)
	return app, nil
}

// Startup opens the local store, builds the per-game controllers and tries
// to resume a persisted session.
func (a *App) Startup(ctx context.Context) {
	a.Bridge.Startup(ctx)

	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		a.log.Fatal().Err(err).Str("dir", a.cfg.DataDir).Msg("creating data dir")
	}
	store, err := kvstore.Open(a.cfg.LedgerPath())
	if err != nil {
		a.log.Fatal().Err(err).Str("path", a.cfg.LedgerPath()).Msg("opening ledger store")
	}
	a.store = store

	a.Games.configure(ctx, ledger.New(store, a.log))
	a.Session.Startup(ctx)

	a.log.Info().Str("api", a.cfg.APIBaseURL).Msg("app started")
}

// Shutdown releases resources before the window closes.
func (a *App) Shutdown(ctx context.Context) {
	a.notices.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing ledger store")
		}
	}
	a.log.Info().Msg("app stopped")
}
