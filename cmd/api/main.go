package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"folio-backend/internal/application/portfolios"
	"folio-backend/internal/config"
	"folio-backend/internal/interfaces/router"
	"folio-backend/internal/marketdata"
	"folio-backend/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("APP_ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("App create failed")
	}

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("Postgres handle unavailable")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Postgres connection failed")
		}
		log.Info().Msg("Postgres connected")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}

	var sched *scheduler.Scheduler
	if db != nil && cfg.SnapshotSchedule != "" {
		prices := marketdata.NewClient(cfg.EODHDAPIKey, cfg.EODHDBaseURL, cfg.CoinGeckoBaseURL)
		job := scheduler.NewSnapshotJob(&portfolios.Service{DB: db, Prices: prices})
		sched = scheduler.New(log.Logger)
		if err := sched.AddJob(cfg.SnapshotSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.SnapshotSchedule).Msg("Snapshot job registration failed")
		}
		sched.Start()
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		if sched != nil {
			sched.Stop()
		}
		_ = app.Shutdown()
	}()

	log.Info().Str("port", cfg.Port).Msg("Server listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
