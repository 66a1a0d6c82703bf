package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dbglog/internal/severity"
	"dbglog/internal/sinks/msglog"
)

func newMessagesCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var minSeverity string
	var categoryName string
	var sessionID string
	var jsonOutput bool
	var clear bool

	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Read the persistent message log",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.MessageLog.Enabled {
				return fmt.Errorf("message log is disabled in config")
			}
			store, err := msglog.Open(msglog.Options{Path: cfg.MessageLog.Path})
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if clear {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d messages\n", removed)
				return nil
			}

			filter := msglog.Filter{Limit: limit, Category: categoryName, SessionID: sessionID}
			if minSeverity != "" {
				sev, ok := severity.Parse(minSeverity)
				if !ok {
					return fmt.Errorf("unknown severity %q", minSeverity)
				}
				filter.MinSeverity = sev
			}
			entries, err := store.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			fmt.Fprintln(out, msglog.RenderWindow(entries, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of messages")
	cmd.Flags().StringVar(&minSeverity, "min-severity", "", "Only messages at or above this severity")
	cmd.Flags().StringVar(&categoryName, "category", "", "Only messages of this category")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only messages of this host session")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete every stored message")
	return cmd
}
