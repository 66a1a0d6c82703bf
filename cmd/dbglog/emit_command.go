package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dbglog/internal/event"
	"dbglog/internal/host"
	"dbglog/internal/ipc"
	"dbglog/internal/logging"
)

func newEmitCommand(ctx *commandContext) *cobra.Command {
	var req ipc.EmitRequest
	var screen, both, local bool
	var duration time.Duration
	var key int32
	var dialogKind string

	cmd := &cobra.Command{
		Use:   "emit TEMPLATE [ARGS...]",
		Short: "Dispatch one event through the host, or in-process with --local",
		Long: "Dispatch one event. TEMPLATE may reference ARGS with {0}, {1:.2f} and so on;\n" +
			"numeric arguments are passed as numbers so format specs apply.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Template = args[0]
			req.Args = args[1:]
			switch {
			case both:
				req.Destination = "both"
			case screen:
				req.Destination = "screen"
			}
			if duration > 0 {
				req.DurationMS = duration.Milliseconds()
			}
			if cmd.Flags().Changed("key") {
				req.Key = &key
			}

			if local {
				return emitLocal(cmd, ctx, req, dialogKind)
			}
			if dialogKind != "" {
				return fmt.Errorf("--dialog needs --local; the host cannot prompt on behalf of a client")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				_, err := client.Emit(req)
				return err
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Severity, "severity", "s", "display", "verbose, display, warning, error or fatal")
	flags.BoolVar(&screen, "screen", false, "Send to the overlay instead of the console")
	flags.BoolVar(&both, "both", false, "Send to the overlay and the console")
	flags.StringVar(&req.Category, "category", "", "Runtime category name (prefixed with dbg)")
	flags.StringVar(&req.Prefix, "prefix", "", "Tag rendered as [prefix]")
	flags.BoolVar(&req.Timestamp, "timestamp", false, "Prefix the message with the current time")
	flags.StringVar(&req.TimeFormat, "time-format", "", "strftime layout for --timestamp, e.g. %H:%M:%S.%L")
	flags.BoolVar(&req.Source, "source", false, "Add the call site location")
	flags.BoolVar(&req.Context, "context", false, "Add the emitting process descriptor")
	flags.StringVar(&req.Color, "color", "", "Overlay color name or #rrggbb")
	flags.DurationVar(&duration, "duration", 0, "Overlay and notification duration")
	flags.Int32Var(&key, "key", 0, "Overlay key; events with the same key replace each other")
	flags.BoolVar(&req.Notify, "notify", false, "Also show a notification")
	flags.BoolVar(&req.OnlyNotify, "only-notify", false, "Show only a notification")
	flags.BoolVar(&req.MessageLog, "message-log", false, "Append to the persistent message log")
	flags.BoolVar(&req.ShowLog, "show-log", false, "Append to the message log and print its window")
	flags.BoolVar(&local, "local", false, "Dispatch in this process instead of the running host")
	flags.StringVar(&dialogKind, "dialog", "", "With --local, ask via a dialog: ok, yesno, okcancel, yesnocancel, cancelretrycontinue, yesnoyesallnoall")
	return cmd
}

// emitLocal builds a throwaway host from config and dispatches directly, so
// Fatal terminates this process and dialogs prompt on this terminal.
func emitLocal(cmd *cobra.Command, ctx *commandContext, req ipc.EmitRequest, dialogKind string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	h, err := host.New(cfg, host.Options{
		Logger: logging.NewNop(),
		Out:    cmd.ErrOrStderr(),
		In:     cmd.InOrStdin(),
	})
	if err != nil {
		return err
	}
	defer h.Close()

	b, err := req.Builder()
	if err != nil {
		return err
	}
	if req.Context {
		b.Context(h.Process())
	}
	if dialogKind != "" {
		kind, ok := event.ParseDialogKind(dialogKind)
		if !ok {
			return fmt.Errorf("unknown dialog kind %q", dialogKind)
		}
		out := cmd.OutOrStdout()
		b.LogToMessageDialog(kind, func(r event.Response) {
			fmt.Fprintf(out, "Response: %s\n", r)
		}, false)
	}
	h.Dispatcher().LogContext(cmd.Context(), b.Build(), req.Template, req.BoxedArgs()...)
	return nil
}
