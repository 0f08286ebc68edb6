package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/config"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/db"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/handlers"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/logger"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/middleware"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/realtime"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/auth"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/maintenance"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store/gormstore"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init("platform-servicos", cfg.AppEnv)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(cfg.DBDSN, !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	st := gormstore.New(gdb)

	hub := realtime.NewHub()
	go hub.Run(ctx)

	var notifier realtime.Notifier = realtime.NewLocalNotifier(hub)
	if cfg.RedisAddr != "" {
		rdb := realtime.NewRedis(realtime.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect redis")
		}
		defer rdb.Close()

		rn := realtime.NewRedisNotifier(rdb, hub)
		go func() {
			if err := rn.Relay(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("redis relay stopped")
			}
		}()
		notifier = rn
		log.Info().Str("addr", cfg.RedisAddr).Msg("realtime fan-out through redis")
	}

	deps := handlers.Deps{
		Config:      cfg,
		Store:       st,
		Hub:         hub,
		Notifier:    notifier,
		Mailer:      auth.LogMailer{},
		Maintenance: maintenance.NewCache(st, cfg.MaintenanceCacheTTL),
		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst),
	}
	if cfg.GoogleEnabled() {
		deps.Google = auth.NewOAuthGoogle(cfg.GoogleClientID, cfg.GoogleSecret, cfg.GoogleRedirect)
	}

	sched, err := worker.New(cfg.CleanupSchedule, st, deps.AuthLimiter)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CleanupSchedule).Msg("invalid cleanup schedule")
	}
	sched.Start()

	app := handlers.NewApp(deps)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("listening")
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal().Err(err).Msg("http server")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sched.Stop(stopCtx)
}
