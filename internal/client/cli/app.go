// Package cli implements the interactive clinicdesk client.
package cli

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/api"
	"github.com/dmitrijs2005/clinicdesk/internal/client/config"
	"github.com/dmitrijs2005/clinicdesk/internal/client/session"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
)

type Mode string

const (
	ModeUnknown Mode = "unknown"
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// apiClient is the part of api.Client the commands use.
type apiClient interface {
	Signup(ctx context.Context, req api.SignupRequest) (*api.User, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.User, error)
	ListPatients(ctx context.Context, token string) ([]*models.Patient, error)
	AddPatient(ctx context.Context, token string, p api.NewPatient) (*models.Patient, error)
	Dashboard(ctx context.Context, token string) (*models.DashboardSummary, error)
	Ping(ctx context.Context) error
}

type sessionStore interface {
	Load() (*session.Session, error)
	Save(s *session.Session) error
	Clear() error
}

type App struct {
	config   *config.Config
	api      apiClient
	sessions sessionStore
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	mu      sync.Mutex
	mode    Mode
	current *session.Session
}

// NewApp wires the CLI to the server named in c and restores a saved
// session if one exists.
func NewApp(c *config.Config, in io.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	store, err := session.NewStore(c.SessionDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   c,
		api:      api.NewClient(c.ServerURL, c.RequestTimeout),
		sessions: store,
		logger:   logger.With("module", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
		mode:     ModeUnknown,
	}

	sess, err := store.Load()
	if err != nil {
		a.logger.Warn(context.Background(), "ignoring saved session", "error", err)
	}
	a.current = sess
	return a, nil
}

// Run starts the online watcher and the REPL, returning when the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	if s := a.session(); s != nil {
		a.println("Restored session for", s.FullName)
	}
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.session() != nil
}

func (a *App) session() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) setSession(s *session.Session) {
	a.mu.Lock()
	a.current = s
	a.mu.Unlock()
}

func (a *App) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return string(a.mode)
	}
	return string(a.mode) + " " + a.current.FullName
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "server status changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher pings the server every interval until ctx is
// done. The first check runs immediately.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.checkOnline(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.api.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
