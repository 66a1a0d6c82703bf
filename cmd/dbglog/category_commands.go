package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dbglog/internal/control"
	"dbglog/internal/ipc"
)

func newCategoryCommand(ctx *commandContext) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Inspect and toggle log categories on the running host",
	}
	categoryCmd.AddCommand(newCategoryListCommand(ctx))
	categoryCmd.AddCommand(newCategoryToggleCommand(ctx, true))
	categoryCmd.AddCommand(newCategoryToggleCommand(ctx, false))
	return categoryCmd
}

func newCategoryListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered categories and their states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Categories()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp.Report)
				}
				out := cmd.OutOrStdout()
				if plain {
					fmt.Fprint(out, resp.Report.String())
					if len(resp.Report.Categories) == 0 {
						fmt.Fprintln(out)
					}
					return nil
				}
				fmt.Fprintln(out, resp.Report.Table())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print the plain-text report instead of a table")
	return cmd
}

func newCategoryToggleCommand(ctx *commandContext, enable bool) *cobra.Command {
	use, short, verb := "disable", "Disable categories by name, or All", "Disabled"
	if enable {
		use, short, verb = "enable", "Enable categories by name, or All", "Enabled"
	}
	return &cobra.Command{
		Use:   use + " <name|All> [name...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				call := client.DisableCategories
				if enable {
					call = client.EnableCategories
				}
				resp, err := call(args)
				if err != nil {
					if strings.Contains(err.Error(), control.ErrNoCategories.Error()) {
						return fmt.Errorf("%s requires at least one category name (or All)", use)
					}
					return err
				}
				out := cmd.OutOrStdout()
				res := resp.Result
				if res.All {
					fmt.Fprintf(out, "%s all %d registered categories\n", verb, res.Updated)
					return nil
				}
				fmt.Fprintf(out, "%s %d categories\n", verb, res.Updated)
				for _, name := range res.Created {
					fmt.Fprintf(out, "Registered new category %s\n", name)
				}
				return nil
			})
		},
	}
}
