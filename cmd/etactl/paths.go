package main

import (
	"fmt"
	"os"

	"github.com/dshills/goeta/pkg/triggerfile"
	"github.com/dshills/goeta/pkg/validation"
)

// resolvePath confines a user-supplied file path argument to the current
// working directory before etactl touches the filesystem with it.
func resolvePath(userPath string) (string, error) {
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	safe, err := validation.ResolveTriggerPath(base, userPath)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", userPath, err)
	}
	return safe, nil
}

// validateTriggerFile runs data through the embedded schema, or through
// globalConfig.Schema when the --schema override flag was set.
func validateTriggerFile(data []byte) error {
	if globalConfig.Schema == "" {
		return triggerfile.ValidateAgainstSchema(data)
	}
	schemaPath, err := resolvePath(globalConfig.Schema)
	if err != nil {
		return fmt.Errorf("resolving --schema: %w", err)
	}
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("reading --schema %s: %w", schemaPath, err)
	}
	return triggerfile.ValidateAgainstCustomSchema(data, schema)
}
