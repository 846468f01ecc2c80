package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/dshills/goeta/pkg/trigger"
	"github.com/dshills/goeta/pkg/triggerfile"
	"github.com/dshills/goeta/pkg/tui"
)

// newWatchCommand builds the `etactl watch` subcommand: load a trigger file,
// launch the live TUI monitor, and feed it an event log line by line at a
// fixed cadence so the progress bars move the way they would against a real
// event stream. Trimmed from the teacher's pkg/cli/run.go `--tui` mode: no
// execution engine to drive, just a dispatcher and a screen.
func newWatchCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <trigger-file> <event-log>",
		Short: "Watch a trigger population fire live in a terminal UI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			triggerPath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			logPath, err := resolvePath(args[1])
			if err != nil {
				return err
			}

			data, err := os.ReadFile(triggerPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", triggerPath, err)
			}
			doc, err := triggerfile.Parse(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", triggerPath, err)
			}
			uncompiled, err := triggerfile.Build(doc, recordDecoder())
			if err != nil {
				return fmt.Errorf("building trigger population: %w", err)
			}

			identity := func(r record) record { return r }
			d := trigger.Compile[record, string, record, record, record](
				uncompiled, identity, identity, actionToEvent)

			events, err := readEventLog(logPath)
			if err != nil {
				return err
			}

			app, err := tui.NewApp()
			if err != nil {
				return fmt.Errorf("initializing terminal: %w", err)
			}
			defer app.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			idx := 0
			refresh := func() {
				if idx < len(events) {
					d.ExecuteEvent(events[idx])
					for {
						a, ok := d.ConsumeAction()
						if !ok {
							break
						}
						app.Monitor().RecordAction(fmt.Sprintf("action: %s", a.kind))
					}
					idx++
				}
				app.Monitor().Update(rowsFor(d))
			}

			return app.Run(ctx, interval, refresh)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "delay between feeding successive log lines")

	return cmd
}

func rowsFor(d *trigger.Dispatcher[string, record, record]) []tui.TriggerRow {
	handles := d.Handles()
	rows := make([]tui.TriggerRow, 0, len(handles))
	for _, h := range handles {
		t, ok := d.Trigger(h)
		if !ok {
			continue
		}
		current, required := t.Progress()
		rows = append(rows, tui.TriggerRow{
			ID:        t.ID(),
			Completed: t.Completed(),
			Current:   current,
			Required:  required,
		})
	}
	return rows
}

func readEventLog(path string) ([]record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var events []record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := gjson.GetMany(line, "id", "payload")
		payload := make(map[string]any)
		if raw := fields[1].Raw; raw != "" {
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				return nil, fmt.Errorf("invalid payload in %s: %w", path, err)
			}
		}
		events = append(events, record{kind: fields[0].String(), fields: payload})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return events, nil
}
