// Package app wires the monitor's components together from a config.Config:
// the record store (PostgREST or local SQLite), the chat client, the
// background task executor, the domain services and the HTTP engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-job-monitor/internal/config"
	"github.com/tbourn/go-job-monitor/internal/discord"
	httpapi "github.com/tbourn/go-job-monitor/internal/http"
	"github.com/tbourn/go-job-monitor/internal/http/handlers"
	"github.com/tbourn/go-job-monitor/internal/jobs"
	"github.com/tbourn/go-job-monitor/internal/postgrest"
	"github.com/tbourn/go-job-monitor/internal/repo"
	"github.com/tbourn/go-job-monitor/internal/services"
	"github.com/tbourn/go-job-monitor/internal/sysutil"
	"github.com/tbourn/go-job-monitor/internal/tasks"
)

// shutdownTimeout bounds the HTTP drain; queued tasks get cfg.Tasks.Timeout.
const shutdownTimeout = 10 * time.Second

// App holds the wired components.
type App struct {
	cfg config.Config

	db       *gorm.DB // nil with the REST store
	store    services.RecordStore
	chat     *discord.Client
	executor *tasks.Executor
	registry *jobs.Registry

	monitor  *services.Monitor
	notifier *services.Notifier
	orch     *services.Orchestrator
}

// New builds an App. The local SQLite store is opened and migrated here;
// the REST store is only contacted on first use.
func New(cfg config.Config) (*App, error) {
	st, db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	chat := discord.NewClient(discord.ClientConfig{
		APIBase:       cfg.Discord.APIBase,
		BotToken:      cfg.Discord.BotToken,
		ApplicationID: cfg.Discord.ApplicationID,
		RatePerSecond: cfg.Discord.SendRate,
		Burst:         cfg.Discord.SendBurst,
		Timeout:       cfg.Discord.Timeout,
	})
	exec := tasks.New(tasks.Config{
		Workers:   cfg.Tasks.Workers,
		QueueSize: cfg.Tasks.QueueSize,
		Timeout:   cfg.Tasks.Timeout,
	})

	reg := jobs.NewRegistry()

	// Without an explicit base URL, retries call this process's own jobs.
	invokeBase := sysutil.FirstNonEmpty(cfg.Jobs.BaseURL, "http://127.0.0.1:"+cfg.Port+"/functions/v1")
	invoker := services.NewHTTPInvoker(invokeBase, cfg.Jobs.InvokeKey, cfg.Jobs.Timeout)

	a := &App{
		cfg:      cfg,
		db:       db,
		store:    st,
		chat:     chat,
		executor: exec,
		registry: reg,
		monitor:  &services.Monitor{Store: st, ProjectName: cfg.ProjectName},
		notifier: &services.Notifier{
			Store:       st,
			Messenger:   chat,
			ChannelID:   cfg.Discord.ChannelID,
			ProjectName: cfg.ProjectName,
		},
	}
	a.orch = &services.Orchestrator{
		Store:     st,
		Retrier:   &services.Retrier{Store: st, Invoker: invoker},
		Auditor:   &services.Auditor{Store: st},
		Messenger: chat,
		Tasks:     exec,
	}
	return a, nil
}

// openStore selects the record store for cfg.Store.Driver.
func openStore(cfg config.Config) (services.RecordStore, *gorm.DB, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := repo.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.Store.SQLitePath, err)
		}
		if err := repo.AutoMigrate(db, cfg.Store.ErrorTable); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return repo.NewStore(db, cfg.Store.ErrorTable), db, nil
	default:
		return postgrest.New(postgrest.Config{
			BaseURL:    cfg.Store.URL,
			ServiceKey: cfg.Store.ServiceKey,
			ErrorTable: cfg.Store.ErrorTable,
			RunTable:   cfg.Store.RunTable,
			AuditTable: cfg.Store.AuditTable,
			Timeout:    cfg.Store.Timeout,
		}), nil, nil
	}
}

// Store returns the record store.
func (a *App) Store() services.RecordStore { return a.store }

// Chat returns the chat client.
func (a *App) Chat() *discord.Client { return a.chat }

// Jobs returns the registry of in-process monitored jobs.
func (a *App) Jobs() *jobs.Registry { return a.registry }

// Notifier returns the announcement batcher.
func (a *App) Notifier() *services.Notifier { return a.notifier }

// Handler builds the Gin engine with every route mounted.
func (a *App) Handler() http.Handler {
	r := gin.New()
	httpapi.RegisterRoutes(r, handlers.Deps{
		Interactions: a.orch,
		Batch:        a.notifier,
		Runner:       a.monitor,
		Errors:       a.store,
		Jobs:         a.registry,
		PublicKey:    a.cfg.Discord.PublicKey,
		ChatReady:    a.cfg.DiscordReady(),
		StoreReady:   a.cfg.StoreReady(),
	}, a.cfg)
	return r
}

// Run serves HTTP until ctx ends, then drains the server and the task
// executor. With a MonitorInterval set it also runs the batcher on a ticker.
func (a *App) Run(ctx context.Context) error {
	a.executor.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.Handler(),
		ReadTimeout:       a.cfg.ReadTimeout,
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("store", a.cfg.Store.Driver).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if a.cfg.MonitorInterval > 0 && a.cfg.DiscordReady() && a.cfg.StoreReady() {
		g.Go(func() error {
			a.tick(gctx, a.cfg.MonitorInterval)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}

		drain := a.cfg.Tasks.Timeout
		if drain <= 0 {
			drain = shutdownTimeout
		}
		tctx, tcancel := context.WithTimeout(context.Background(), drain)
		defer tcancel()
		if err := a.executor.Shutdown(tctx); err != nil {
			log.Warn().Err(err).Msg("background tasks canceled at shutdown")
		}
		return nil
	})
	return g.Wait()
}

// tick runs the batcher every interval until ctx ends.
func (a *App) tick(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	log.Info().Dur("interval", every).Msg("in-process monitor enabled")
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rep, err := a.notifier.Run(ctx)
			if err != nil {
				log.Error().Err(err).Msg("scheduled monitor run failed")
				continue
			}
			log.Info().Int("days_reported", len(rep.Reported)).Int("days_failed", len(rep.Failed)).Msg("scheduled monitor run")
		}
	}
}

// Close releases the local database, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
