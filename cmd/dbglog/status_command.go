package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dbglog/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running host's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "PID:          %d\n", status.PID)
				fmt.Fprintf(out, "Session:      %s\n", status.SessionID)
				fmt.Fprintf(out, "Instance:     %d\n", status.Instance)
				fmt.Fprintf(out, "Started:      %s\n", humanize.RelTime(status.StartedAt, time.Now(), "ago", "from now"))
				fmt.Fprintf(out, "Socket:       %s\n", status.Socket)
				if status.ConfigPath != "" {
					fmt.Fprintf(out, "Config:       %s\n", status.ConfigPath)
				}
				fmt.Fprintf(out, "Categories:   %d (%d disabled)\n", status.Categories, status.Disabled)
				fmt.Fprintf(out, "Sinks:        %s\n", strings.Join(status.Sinks, ", "))
				fmt.Fprintf(out, "Recording:    %s\n", yesNo(status.Recording))
				if status.RecordingPath != "" {
					fmt.Fprintf(out, "Recording to: %s\n", status.RecordingPath)
				}
				if status.MessageLogPath != "" {
					fmt.Fprintf(out, "Message log:  %s\n", status.MessageLogPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
