package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/habits/internal/config"
	"github.com/lazypower/habits/internal/league"
	"github.com/lazypower/habits/internal/scoring"
	"github.com/lazypower/habits/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP command bridge",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.engine.EnsureUser(cmd.Context()); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	// First corrupt-store error from either the bridge or the decay timer.
	fatalCh := make(chan error, 1)
	onFatal := func(err error) {
		select {
		case fatalCh <- err:
		default:
		}
	}

	if a.cfg.Decay.Interval > 0 {
		timer := a.engine.StartDecayTimer(a.cfg.Decay.Interval, penaltyFunc(a.cfg.Decay), onFatal)
		defer timer.Stop()
		a.log.Info("decay timer started", zap.Duration("interval", a.cfg.Decay.Interval))
	}

	srv := server.New(a.db, a.commands, VersionString(), server.Options{
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		Logger:         a.log,
		OnFatal:        onFatal,
	})
	addr := a.cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("habits serving", zap.String("addr", addr), zap.String("db", a.db.Path))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var fatal error
	select {
	case <-done:
		a.log.Info("shutting down")
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case fatal = <-fatalCh:
		a.log.Error("database is corrupt, shutting down", zap.Error(fatal))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil && fatal == nil {
		return err
	}
	if fatal != nil {
		return fmt.Errorf("serve: %w", fatal)
	}
	return nil
}

// penaltyFunc picks the per-tick decay cost for the timer.
func penaltyFunc(cfg config.DecayConfig) scoring.PenaltyFunc {
	if cfg.LeagueAware {
		return league.Cost
	}
	return func(int16) int16 { return cfg.Penalty }
}
