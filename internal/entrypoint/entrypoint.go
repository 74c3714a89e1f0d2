package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookscanner/internal/config"
	"github.com/mrlokans/bookscanner/internal/covers"
	"github.com/mrlokans/bookscanner/internal/database"
	"github.com/mrlokans/bookscanner/internal/database/books"
	http_controllers "github.com/mrlokans/bookscanner/internal/http"
	"github.com/mrlokans/bookscanner/internal/metadata"
	"github.com/mrlokans/bookscanner/internal/metrics"
	"github.com/mrlokans/bookscanner/internal/records"
	"github.com/mrlokans/bookscanner/internal/scan"
	"github.com/mrlokans/bookscanner/internal/scheduler"
	"github.com/mrlokans/bookscanner/internal/selection"
	"github.com/mrlokans/bookscanner/internal/sessions"
	"github.com/mrlokans/bookscanner/internal/tasks"
)

// App holds the wired components shared by the server and the CLI commands.
type App struct {
	Config   *config.Config
	Database *database.Database
	Books    *books.Repository
	Records  *records.Store
	Gateway  *metadata.Gateway
	Metrics  *metrics.Metrics
}

// NewApp opens the database and builds the record store and lookup gateway.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	provider, err := metadata.NewProvider(cfg.Lookup)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("Lookup provider: %s", provider.Name())

	repo := books.NewRepository(db.DB)
	return &App{
		Config:   cfg,
		Database: db,
		Books:    repo,
		Records:  records.NewStore(repo),
		Gateway:  metadata.NewGateway(provider),
		Metrics:  metrics.New(),
	}, nil
}

// NewCoordinator creates a scan coordinator that resolves through the gateway
// and saves into the record store.
func (a *App) NewCoordinator() *scan.Coordinator {
	return scan.NewCoordinator(a.Gateway, a.Records,
		scan.WithLookupTimeout(a.Config.Scan.LookupTimeout),
		scan.WithRecorder(a.Metrics),
	)
}

// NewSession is the sessions.Factory for the HTTP server.
func (a *App) NewSession() (*scan.Coordinator, *selection.Manager) {
	return a.NewCoordinator(), selection.NewManager(a.Records)
}

func (a *App) Close() {
	if err := a.Database.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// coverCacheDir defaults to a covers directory next to the database file.
func coverCacheDir(cfg *config.Config) string {
	if cfg.Covers.Dir != "" {
		return cfg.Covers.Dir
	}
	return filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
}

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is done, then shuts it down within the
// configured timeout.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// Run starts the server and its background workers and blocks until ctx is
// done or one of them fails.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	log.Printf("Starting BookScanner v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	registry := sessions.NewRegistry(app.NewSession)
	registry.OnChange(app.Metrics.SetSessions)
	defer registry.CloseAll()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	sweeper := scheduler.NewSessionSweeper(registry, cfg.Scan.SweepSchedule, cfg.Scan.SessionIdleTimeout)
	if err := sweeper.Start(gctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	coverCache, err := covers.NewCache(coverCacheDir(cfg))
	if err != nil {
		log.Printf("WARNING: Failed to initialize cover cache: %v", err)
	} else {
		log.Printf("Cover cache initialized at %s", coverCache.CacheDir())
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	if cfg.Tasks.Enabled && coverCache != nil {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCacheCoverQueue(coverCache))
		go taskClient.Start(gctx)
	}

	if coverCache != nil {
		// A nil *tasks.Client must not reach the interface.
		var enqueuer covers.Enqueuer
		if taskClient != nil {
			enqueuer = taskClient
		}
		warmer := covers.NewWarmer(coverCache, enqueuer)
		g.Go(func() error {
			return warmer.Run(gctx, app.Records)
		})
	}

	routerCfg := http_controllers.RouterConfig{
		Records:    app.Records,
		Sessions:   registry,
		CoverCache: coverCache,
		Database:   app.Database,
		Counter:    app.Books,
		Deletions:  app.Metrics,
		Version:    version,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = app.Metrics.Handler()
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
	}

	g.Go(func() error {
		// The server stopping for any reason ends the other workers.
		defer cancel()
		return Serve(gctx, router, cfg, onShutdown)
	})

	return g.Wait()
}
