package main

import (
	"context"
	"os"
	"time"

	"github.com/0x13a/jobservice/internal/config"
	"github.com/0x13a/jobservice/internal/handler"
	"github.com/0x13a/jobservice/internal/job"
	"github.com/0x13a/jobservice/internal/jobstore"
	"github.com/0x13a/jobservice/internal/server"
	"github.com/0x13a/jobservice/internal/template"
	"github.com/0x13a/jobservice/static"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

func main() {
	bootLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		bootLog.Fatal().Err(err).Msg("unable to load .env")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("unable to load config")
	}
	log := newLogger(cfg)

	backend, err := jobstore.OpenBackend(context.Background(), jobstore.RedisOptions{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("unable to open job cache")
	}
	defer backend.Close()

	repo := job.NewRepository(cfg.JobsAPIURL, cfg.JobsAPITimeout)
	store := jobstore.New(repo, backend, log.With().Str("component", "jobstore").Logger())

	svr := server.NewServer(
		cfg,
		mux.NewRouter(),
		template.NewTemplate(static.Views),
		sessions.NewCookieStore(cfg.SessionKey),
		log,
	)
	handler.RegisterRoutes(svr, store)

	log.Info().Str("jobs_api", repo.BaseURL()).Msg("starting job board")
	if err := svr.Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
