package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dbglog/internal/ipc"
	"dbglog/internal/sinks/spatial"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Control the spatial annotation recorder",
	}

	startCmd := &cobra.Command{
		Use:   "start [name]",
		Short: "Arm the recorder; the name defaults to a timestamp",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordStart(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recording to %s\n", resp.Path)
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Disarm the recorder and close the recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordStop()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped recording %s (%d annotations)\n", resp.Path, resp.Written)
				return nil
			})
		},
	}

	recordCmd.AddCommand(startCmd, stopCmd, newRecordShowCommand())
	return recordCmd
}

func newRecordShowCommand() *cobra.Command {
	var limit int
	var follow bool

	cmd := &cobra.Command{
		Use:         "show <recording.jsonl>",
		Short:       "Print the annotations of a recording, optionally following new ones",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			res, err := spatial.Tail(cmd.Context(), path, spatial.TailOptions{Offset: -1, Limit: limit})
			if err != nil {
				return err
			}
			if len(res.Records) == 0 && !follow {
				fmt.Fprintln(out, "Recording is empty.")
				return nil
			}
			if len(res.Records) > 0 {
				fmt.Fprintln(out, renderRecords(res.Records))
			}
			if !follow {
				return nil
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			offset := res.Offset
			for {
				next, err := spatial.Tail(ctx, path, spatial.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				offset = next.Offset
				if len(next.Records) > 0 {
					fmt.Fprintln(out, renderRecords(next.Records))
				}
			}
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of trailing annotations to print first")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing annotations as they are recorded")
	return cmd
}

func renderRecords(records []spatial.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		shape := r.Shape.String()
		if r.Text {
			shape = "text"
		}
		rows = append(rows, []string{
			r.Time.Local().Format("15:04:05.000"),
			r.Category,
			r.Owner,
			shape,
			r.Location.String(),
			r.Color,
			r.Message,
		})
	}
	return renderTable(
		[]string{"Time", "Category", "Owner", "Shape", "Location", "Color", "Message"},
		rows,
		nil,
	)
}
