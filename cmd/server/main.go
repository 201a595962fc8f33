package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pairpad/pairpad/internal/adapters/control"
	"github.com/pairpad/pairpad/internal/adapters/docsync"
	router "github.com/pairpad/pairpad/internal/adapters/http"
	"github.com/pairpad/pairpad/internal/app"
	"github.com/pairpad/pairpad/internal/auth"
	"github.com/pairpad/pairpad/internal/config"
	"github.com/pairpad/pairpad/internal/exec"
	"github.com/pairpad/pairpad/internal/store"
	"github.com/pairpad/pairpad/internal/transport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	pg, err := store.NewPostgres(ctx, cfg.PGURL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect")
	}
	defer pg.Close()
	if err := store.RunMigrations(ctx, pg); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}

	// Redis is optional; without it document-sync fanout is local only.
	var bus *docsync.RedisBus
	if cfg.RedisAddr != "" {
		bus, err = docsync.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect")
		}
		defer bus.Close()
	}

	jwt := auth.New(cfg.Secret)
	reg := app.NewRegistry()
	sessions := app.NewSessionManager(pg, reg, cfg.WaitTimeout)

	ctl := &control.Controller{
		Sessions:     sessions,
		Auth:         jwt,
		AuthRequired: cfg.AuthRequired,
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
	}

	docs := docsync.NewHub(bus)
	go docs.Run(ctx)

	runner := exec.NewClient(cfg.RunnerURL)
	rest := router.SetupRouter(cfg, pg, runner, jwt)

	corsmw := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllow,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// One listener, two upgrade protocols plus REST. The transport
	// router gives each upgrade request exactly one owner and closes
	// anything unmatched.
	mux := transport.NewRouter(corsmw.Handler(rest))
	mux.Handle("/ws/control", ctl)
	mux.Handle(docsync.PathPrefix, docs)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("pairpad server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
