package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/dshills/goeta/pkg/engmon"
	"github.com/dshills/goeta/pkg/enginelog"
	"github.com/dshills/goeta/pkg/snapshot"
	"github.com/dshills/goeta/pkg/trigger"
	"github.com/dshills/goeta/pkg/triggerfile"
)

// newPlayCommand builds the `etactl play` subcommand: load a trigger file,
// replay a newline-delimited JSON event log against it, print every action
// produced.
//
// Each log line is shaped {"id": "<event kind>", "payload": {...}}. gjson
// picks the "id" and "payload" fields out of the line without unmarshaling
// the whole object first, the way the teacher's pkg/transform/jsonpath.go
// uses gjson.Get for single-field extraction instead of a full decode.
func newPlayCommand() *cobra.Command {
	var traceID string
	var snapshotID string

	cmd := &cobra.Command{
		Use:   "play <trigger-file> <event-log>",
		Short: "Replay an event log against a trigger population",
		Long: `Play loads the trigger file, then reads the event log one line at a time,
feeding each line into the dispatcher and printing any actions it produces.

Each event log line must be a JSON object: {"id": "<kind>", "payload": {...}}.

Example:
  etactl play triggers.yaml events.ndjson --trace-id overheat`,
		Args: cobra.ExactArgs(2),
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
			if err := validateTriggerFile(data); err != nil {
				return fmt.Errorf("trigger file failed schema validation: %w", err)
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

			logger := enginelog.Default()
			if globalConfig.Debug {
				logger = enginelog.New(os.Stderr, enginelog.LevelDebug)
			}

			monitor := engmon.NewMonitor()
			stopLogging := enginelog.LogMonitorEvents(monitor, logger, 64)
			defer stopLogging()

			var traceHandle trigger.TriggerHandle
			tracing := false
			if traceID != "" {
				h, ok := d.ByID(traceID)
				if !ok {
					return fmt.Errorf("no trigger with id %q", traceID)
				}
				traceHandle, tracing = h, true
			}

			file, err := os.Open(logPath)
			if err != nil {
				return fmt.Errorf("opening %s: %w", logPath, err)
			}
			defer file.Close()

			scanner := bufio.NewScanner(file)
			lineNo := 0
			for scanner.Scan() {
				lineNo++
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				fields := gjson.GetMany(line, "id", "payload")
				kind := fields[0].String()
				if kind == "" {
					return fmt.Errorf("event log line %d: missing \"id\"", lineNo)
				}

				payload := make(map[string]any)
				if raw := fields[1].Raw; raw != "" {
					if err := json.Unmarshal([]byte(raw), &payload); err != nil {
						return fmt.Errorf("event log line %d: invalid payload: %w", lineNo, err)
					}
				}

				monitor.Emit(engmon.Event{Type: engmon.EventDispatchStarted, Timestamp: time.Now(), Detail: kind})

				wasCompleted := false
				if tracing {
					if t, ok := d.Trigger(traceHandle); ok {
						wasCompleted = t.Completed()
					}
				}

				d.ExecuteEvent(record{kind: kind, fields: payload})

				for {
					a, ok := d.ConsumeAction()
					if !ok {
						break
					}
					fmt.Fprintf(cmd.OutOrStdout(), "action: %s %v\n", a.kind, a.fields)
					monitor.Emit(engmon.Event{Type: engmon.EventActionEmitted, Timestamp: time.Now(), Detail: a.kind})
				}

				if tracing {
					current, required, _ := d.Progress(traceHandle)
					t, _ := d.Trigger(traceHandle)
					if !wasCompleted && t.Completed() {
						monitor.Emit(engmon.Event{
							Type:      engmon.EventTriggerFired,
							TriggerID: traceID,
							Timestamp: time.Now(),
							Progress:  &engmon.ProgressSnapshot{Current: current, Required: required},
						})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "trace %s: %.0f/%.0f completed=%v\n",
						traceID, current, required, t.Completed())
				}

				monitor.Emit(engmon.Event{Type: engmon.EventDispatchFinished, Timestamp: time.Now(), Detail: kind})
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading %s: %w", logPath, err)
			}

			if globalConfig.DBPath != "" {
				store, err := snapshot.Open(globalConfig.DBPath)
				if err != nil {
					return fmt.Errorf("opening snapshot store %s: %w", globalConfig.DBPath, err)
				}
				defer store.Close()

				snap, err := snapshot.Capture(d, func(actions []record) ([]byte, error) {
					return json.Marshal(actions)
				})
				if err != nil {
					return fmt.Errorf("capturing snapshot: %w", err)
				}
				if snapshotID != "" {
					snap.ID = snapshotID
				}
				if err := store.Save(snap); err != nil {
					return fmt.Errorf("saving snapshot: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ snapshot %s saved to %s\n", snap.ID, globalConfig.DBPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&traceID, "trace-id", "", "print progress for this trigger id after every event")
	cmd.Flags().StringVar(&snapshotID, "snapshot-id", "", "id to save the post-replay snapshot under (default: a generated uuid)")

	return cmd
}
