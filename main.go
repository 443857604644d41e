package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kalenderium/internal/account"
	"kalenderium/internal/auth"
	"kalenderium/internal/calendar"
	"kalenderium/internal/config"
	"kalenderium/internal/http/handlers"
	"kalenderium/internal/http/router"
	"kalenderium/internal/logger"
	"kalenderium/internal/repo"
	"kalenderium/internal/route"
	"kalenderium/internal/store"
	"kalenderium/internal/view"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, !cfg.IsProduction())
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := store.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	views, err := view.New(log)
	if err != nil {
		return err
	}

	h := &handlers.Handler{
		Accounts: account.NewService(repo.NewUsers(pool), store.NewTokens(rdb), cfg.Session.TokenTTL, log),
		Calendar: calendar.NewService(repo.NewEvents(pool), log),
		Sessions: auth.NewStore(auth.Options{
			Secret: cfg.Session.Secret,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.Secure,
		}),
		Views:   views,
		Routes:  route.Default(),
		Log:     log,
		Version: version,
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(ctx, h, router.Options{
			RateLimit:   cfg.API.RateLimit,
			RateBurst:   cfg.API.RateBurst,
			CORSOrigins: cfg.API.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
		ErrorLog:          zap.NewStdLog(log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
