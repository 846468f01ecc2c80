// Package validation confines the file paths and identifiers goeta accepts
// from the outside world — trigger files, event logs, schema overrides, and
// trigger/snapshot IDs — to what the rest of the engine can safely use.
//
// # Path confinement
//
// cmd/etactl resolves every path argument it is given (a trigger file, an
// event log, a --schema override, etactl init's output path) against the
// current working directory before touching the filesystem with it:
//
//	path, err := validation.ResolveTriggerPath(cwd, userInput)
//	if err != nil {
//	    return fmt.Errorf("invalid path: %w", err)
//	}
//	data, err := os.ReadFile(path)
//
// ResolveTriggerPath rejects absolute paths and ".." components that climb
// above cwd lexically,
// then resolves symlinks and checks containment against cwd, the same
// defense-in-depth a host embedding the engine needs against a malicious
// trigger-file or event-log path. It tolerates a target that doesn't exist
// yet, since `etactl init` writes a new file.
//
// # Identifier confinement
//
// Trigger IDs end up as SQLite snapshot keys and --trace-id/--snapshot-id
// CLI arguments; ValidateIdentifier restricts them to a conservative
// character set (letters, digits, '-', '_') so they round-trip cleanly
// through YAML, SQL, and a terminal without escaping.
package validation
