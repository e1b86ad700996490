package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cybermorph/morphcli/internal/client/api"
	"github.com/cybermorph/morphcli/internal/client/config"
	"github.com/cybermorph/morphcli/internal/client/repositories/kv"
	"github.com/cybermorph/morphcli/internal/client/scan"
	"github.com/cybermorph/morphcli/internal/client/services"
	"github.com/cybermorph/morphcli/internal/client/session"
	"github.com/cybermorph/morphcli/internal/client/storage"
	"github.com/cybermorph/morphcli/internal/logging"
)

// scanRunner is the slice of the scan workflow the REPL drives.
// *scan.Workflow satisfies it; tests can provide a stub.
type scanRunner interface {
	Submit(ctx context.Context, filename string, content []byte) (*scan.Report, error)
	Phase() scan.Phase
	Progress() float64
}

type App struct {
	config   *config.Config
	sessions *session.Manager
	auth     services.AuthService
	stats    services.StatsService
	scans    scanRunner
	log      logging.Logger

	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the client together: the SQLite-backed session store, the
// session manager (rehydrated immediately), the rate-limited API client with
// the manager as its bearer source, and the services on top.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	dataDir, err := storage.EnsureDataDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	db, err := storage.Open(ctx, filepath.Join(dataDir, "session.db"))
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	store := session.NewStore(kv.NewMemoryRepository(), kv.NewSQLiteRepository(db))
	sessions := session.NewManager(store, time.Now, log)

	if err := sessions.Init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session init: %w", err)
	}

	client := api.NewClient(api.Options{
		BaseURL: cfg.ServerBaseURL,
		Timeout: cfg.RequestTimeout,
		MaxRPS:  cfg.MaxRPS,
		Tokens:  sessions,
		Logger:  log,
	})

	return &App{
		config:   cfg,
		sessions: sessions,
		auth:     services.NewAuthService(client, sessions),
		stats:    services.NewStatsService(client, sessions),
		scans:    scan.NewWorkflow(client, log),
		log:      log,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run drives the REPL until the user exits, then releases the database.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.db.Close() }()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.sessions.Current()
	return ok
}
