package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/goeta/pkg/triggerfile"
)

// newValidateCommand builds the `etactl validate` subcommand, grounded on the
// teacher's pkg/cli/validate.go checklist style: report each check as it
// passes, stop at the first failure.
func newValidateCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate <trigger-file>",
		Short: "Validate a trigger population file",
		Long: `Validate checks a trigger file against the population schema and confirms
it parses into a well-formed Document:

- YAML syntax
- schema conformance (condition kinds, required fields)
- every trigger decodes without error

Example:
  etactl validate triggers.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			if err := validateTriggerFile(data); err != nil {
				fmt.Fprintln(cmd.OutOrStderr(), "✗ schema validation failed")
				if verbose {
					fmt.Fprintf(cmd.OutOrStderr(), "  %v\n", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ schema valid")

			doc, err := triggerfile.Parse(data)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStderr(), "✗ document parse failed")
				if verbose {
					fmt.Fprintf(cmd.OutOrStderr(), "  %v\n", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ parsed %d trigger(s)\n", len(doc.Triggers))

			if _, err := triggerfile.Build(doc, recordDecoder()); err != nil {
				fmt.Fprintln(cmd.OutOrStderr(), "✗ condition build failed")
				if verbose {
					fmt.Fprintf(cmd.OutOrStderr(), "  %v\n", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ all conditions built")

			fmt.Fprintf(cmd.OutOrStdout(), "\n%s is valid\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed error information")

	return cmd
}
