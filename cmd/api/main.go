package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Krusty2272/AiFitnessCoach/internal/authflow"
	"github.com/Krusty2272/AiFitnessCoach/internal/config"
	"github.com/Krusty2272/AiFitnessCoach/internal/httpapi"
	"github.com/Krusty2272/AiFitnessCoach/internal/initdata"
	"github.com/Krusty2272/AiFitnessCoach/internal/session"
	"github.com/Krusty2272/AiFitnessCoach/internal/users"
	"github.com/Krusty2272/AiFitnessCoach/internal/users/migrations"
	"github.com/Krusty2272/AiFitnessCoach/pkg/logger"
	"github.com/Krusty2272/AiFitnessCoach/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions, err := session.NewManager(cfg.Auth)
	if err != nil {
		log.Error("session manager init failed", "err", err)
		os.Exit(1)
	}
	verifier := initdata.NewVerifier(cfg.Telegram.BotToken, cfg.Telegram.InitDataMaxAge)

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(rootCtx, db); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Redis is optional; without it every identify hits Postgres.
	var cache *users.Cache
	if addr := cfg.RedisAddr(); addr != "" {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: addr})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		cache = users.NewCache(rdb, 5*time.Minute)
	}

	repo := users.NewPostgresRepo(db)
	auth := authflow.NewService(verifier, sessions, repo, cache, cfg.App.DefaultLocale)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, httpapi.Handlers{Auth: auth})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
