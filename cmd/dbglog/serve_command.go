package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dbglog/internal/host"
	"dbglog/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var readStdin bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dbglog host in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if ctx.socketFlag != nil && *ctx.socketFlag != "" {
				cfg.Control.Socket = *ctx.socketFlag
			}

			sessionID := uuid.NewString()
			logger, err := logging.NewFromConfig(cfg, sessionID)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			opts := host.Options{
				Logger:     logger,
				ConfigPath: ctx.configPath,
				Out:        cmd.ErrOrStderr(),
				SessionID:  sessionID,
			}
			if readStdin {
				opts.Stdin = cmd.InOrStdin()
			}
			h, err := host.New(cfg, opts)
			if err != nil {
				return err
			}
			defer h.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return h.Run(signalCtx)
		},
	}

	cmd.Flags().BoolVar(&readStdin, "stdin", false, "Dispatch each line read from stdin; exit at end of input")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the host's own log level")
	return cmd
}
