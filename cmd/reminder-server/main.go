// Command reminder-server serves the reminder HTTP API and runs the daily
// reminder job.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/notexe/reminder-tracker/internal/config"
	"github.com/notexe/reminder-tracker/internal/httpapi"
	"github.com/notexe/reminder-tracker/internal/logger"
	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/notexe/reminder-tracker/internal/scheduler"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to config file")
	flag.Parse()

	boot := logger.New("reminder-server", logger.Options{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal().Stack().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		boot.Fatal().Stack().Err(err).Msg("Invalid configuration")
	}

	log := logger.New("reminder-server", logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Stack().Err(err).Msg("Invalid timezone")
	}
	today := func() reminder.Date { return reminder.Today(time.Now, loc) }

	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("db", cfg.Database.Path).
		Str("renewal_mode", cfg.Renewal.Mode).
		Strs("channels", cfg.Notify.Channels).
		Bool("scheduler", cfg.Scheduler.Enabled).
		Msg("Reminder service starting…")

	// -------- Storage layer -----------------
	if err := cfg.EnsureDatabaseDir(); err != nil {
		log.Fatal().Stack().Err(err).Msg("Failed to prepare database directory")
	}
	store, err := reminder.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatal().Stack().Err(err).Msg("Storage unavailable")
	}
	defer store.Close()

	// -------- Domain services ---------------
	engine := reminder.NewEngine(store, log)
	gate, err := notify.FromConfig(cfg.Notify, store, log)
	if err != nil {
		log.Fatal().Stack().Err(err).Msg("Invalid notification settings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// -------- Scheduler ---------------------
	var wg sync.WaitGroup
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(engine, gate, cfg, log)
		if err != nil {
			log.Fatal().Stack().Err(err).Msg("Invalid scheduler settings")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sched.Run(ctx); err != nil {
				log.Error().Stack().Err(err).Msg("Scheduler stopped")
			}
		}()
	}

	// -------- Router & Server --------------
	router := httpapi.NewRouter(httpapi.NewHandler(store, engine, gate, today), log)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Stack().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Info().Msg("Shutting down server…")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error().Stack().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Msg("Server exited")
}
