package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
	"github.com/Kantisaranucheep/schedule-assistant/server"
	"github.com/Kantisaranucheep/schedule-assistant/store"
	"github.com/Kantisaranucheep/schedule-assistant/store/db"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "schedule-assistant",
	Short: "A calendar scheduling assistant with natural language understanding",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := profile.FromEnv(version)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		if p.IsDev() {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		} else {
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
		}

		dbDriver, err := db.NewDBDriver(p)
		if err != nil {
			return fmt.Errorf("failed to create database driver: %w", err)
		}

		st := store.New(dbDriver, p)
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s, err := server.NewServer(ctx, p, st)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Start(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			s.Shutdown(context.Background())
			return nil
		})
		if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
