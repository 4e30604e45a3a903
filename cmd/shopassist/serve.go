package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/PabloGalante/shopassist/internal/adapters/http"
	"github.com/PabloGalante/shopassist/internal/app/products"
	"github.com/PabloGalante/shopassist/internal/app/schedule"
	"github.com/PabloGalante/shopassist/internal/config"
	"github.com/PabloGalante/shopassist/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and websocket API",
		Long: `Serve the HTTP and websocket API.

Configuration comes from SHOPASSIST_* environment variables, optionally
layered over a YAML file named by SHOPASSIST_CONFIG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			observability.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := observability.Logger()

	src, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	svc := newConversationService(src.provider, schedule.NewTimer(), cfg)
	defer svc.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpadapter.NewServer(svc, products.NewService(src.provider)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Dur("reply_delay", cfg.ReplyDelay).
			Str("filter_read_mode", string(cfg.FilterReadMode)).
			Msg("shopassist API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if src.watch != nil {
		g.Go(func() error {
			return src.watch(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
