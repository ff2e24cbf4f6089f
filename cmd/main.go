package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jfenske/homeledger/internal/config"
	"github.com/jfenske/homeledger/internal/httpapi"
	"github.com/jfenske/homeledger/internal/identity"
	"github.com/jfenske/homeledger/internal/service/account"
	"github.com/jfenske/homeledger/internal/service/entry"
	"github.com/jfenske/homeledger/internal/service/lifecycle"
	"github.com/jfenske/homeledger/internal/service/recurring"
	"github.com/jfenske/homeledger/internal/storage/memory"
	pgstore "github.com/jfenske/homeledger/internal/storage/postgres"
)

// store is the union of repository and writer interfaces consumed by the
// service layer; both backends satisfy it.
type store interface {
	account.Repo
	account.Writer
	entry.Repo
	entry.Writer
	recurring.Repo
	recurring.Writer
	lifecycle.Repo
	lifecycle.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	var (
		st      store
		ready   func(context.Context) error
		closeFn func()
	)
	if dsn := strings.TrimSpace(cfg.DB.URL); dsn != "" {
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		st, ready, closeFn = pg, pg.Ready, pg.Close
		logger.Info("storage backend: postgres")
	} else {
		st = memory.New()
		logger.Info("storage backend: memory")
	}

	resolver := buildResolver(cfg)
	if resolver == nil {
		logger.Error("no identity resolver configured: set JWT_HS256_SECRET or IDENTITY_HEADER")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.App.Port),
		Handler: httpapi.New(httpapi.Deps{
			Accounts:  account.New(st, st),
			Entries:   entry.New(st, st),
			Recurring: recurring.New(st, st),
			Lifecycle: lifecycle.New(st, st, logger),
			Resolver:  resolver,
			Ready:     ready,
			Currency:  cfg.Ledger.Currency,
			Logger:    logger,
		}).Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(cfg.App.Name+" listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// buildResolver assembles the identity chain from config: bearer tokens when a
// JWT secret is set, a trusted gateway header when one is named.
func buildResolver(cfg *config.Config) identity.Resolver {
	var chain identity.Chain
	if s := strings.TrimSpace(cfg.Auth.JWTSecret); s != "" {
		chain = append(chain, identity.Bearer{
			Secret:   []byte(s),
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		})
	}
	if h := strings.TrimSpace(cfg.Auth.TrustedHeader); h != "" {
		chain = append(chain, identity.Header{Name: h})
	}
	if len(chain) == 0 {
		return nil
	}
	return chain
}

func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if strings.ToLower(strings.TrimSpace(format)) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
