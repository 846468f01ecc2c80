package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/goeta/pkg/triggerfile"
)

// newInitCommand builds the `etactl init` subcommand, trimmed from the
// teacher's pkg/cli/init.go template picker down to the one template an ETA
// engine starter file needs: a single event_count trigger, since that's the
// condition kind every new user's first trigger tends to be.
func newInitCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "init <trigger-file>",
		Short: "Scaffold a starting trigger population file",
		Long: `Create a new trigger file with one example trigger, ready to edit.

Example:
  etactl init triggers.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			doc := triggerfile.Document{
				Version: "1",
				Triggers: []triggerfile.RawTrigger{
					{
						ID: "example",
						Condition: triggerfile.RawCondition{
							Kind: "event_count",
							Event: triggerfile.RawPayload{
								"kind": "example_event",
							},
							Required: 1,
						},
						Actions: []triggerfile.RawPayload{
							{"kind": "example_action"},
						},
					},
				},
			}

			data, err := triggerfile.ToYAML(doc)
			if err != nil {
				return fmt.Errorf("marshaling starter document: %w", err)
			}

			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ created %s\n", args[0])
			if description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", description)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
			fmt.Fprintf(cmd.OutOrStdout(), "  1. Edit %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "  2. etactl validate %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "  3. etactl play %s <event-log>\n", path)

			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description to print after scaffolding")

	return cmd
}
