package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/PabloGalante/shopassist/internal/adapters/tui"
	"github.com/PabloGalante/shopassist/internal/app/schedule"
	"github.com/PabloGalante/shopassist/internal/config"
	"github.com/PabloGalante/shopassist/internal/observability"
)

func newChatCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long: `Chat with the assistant in the terminal.

Type what you are looking for and press enter. Slash commands set the
filters: /category, /min, /max, /stock on|off, /clear, /reset, /quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			// the alt screen owns the terminal, so logs go to a file or nowhere
			var logOut io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			observability.Setup(logOut, cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			src, err := buildCatalog(cfg)
			if err != nil {
				return err
			}

			svc := newConversationService(src.provider, schedule.NewTimer(), cfg)
			defer svc.Close()

			session, _, err := svc.StartSession(ctx)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			if src.watch != nil {
				g.Go(func() error {
					return src.watch(gctx)
				})
			}
			g.Go(func() error {
				defer stop()
				return tui.Run(gctx, svc, session.ID)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file while chatting")
	return cmd
}
