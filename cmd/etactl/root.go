package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

// version is the current etactl release.
const version = "0.1.0"

// Config holds the flags shared across every subcommand, mirroring the
// teacher's pkg/cli GlobalConfig pattern: one struct, populated by
// PersistentFlags, read by every subcommand's RunE.
type Config struct {
	Debug   bool
	DBPath  string
	Schema  string
	TraceID string
}

// globalConfig is the shared configuration instance every subcommand reads.
var globalConfig = &Config{}

// newRootCommand builds the etactl command tree.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "etactl",
		Short: "etactl - drive an event-trigger-action engine from the command line",
		Long: `etactl loads a trigger population from a YAML file, replays an event log
against it, and reports the actions and progress the population produces.

It is a thin operator surface over github.com/dshills/goeta: no part of the
engine itself depends on this binary.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if globalConfig.Debug {
				log.SetOutput(os.Stderr)
				log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
			} else {
				log.SetOutput(io.Discard)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&globalConfig.Debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&globalConfig.DBPath, "db-path", "", "SQLite snapshot store path (default: none, snapshotting disabled)")
	cmd.PersistentFlags().StringVar(&globalConfig.Schema, "schema", "", "override the embedded trigger-file JSON schema with one on disk")

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newPlayCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
