package validation

import "fmt"

// IsValidIdentifierChar reports whether ch may appear in a trigger ID or
// snapshot ID: ASCII letters, digits, '-', and '_'. Trigger IDs are used as
// map keys, SQLite snapshot rows, and CLI --trace-id/--snapshot-id
// arguments, so they're kept to a conservative character set rather than
// accepting arbitrary YAML scalars.
func IsValidIdentifierChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_'
}

// ValidateIdentifier checks every rune in id against IsValidIdentifierChar,
// used by triggerfile.Parse on an author-supplied trigger ID and by
// snapshot.SQLiteStore.Save on a caller-supplied snapshot ID.
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("validation: identifier cannot be empty")
	}
	for _, ch := range id {
		if !IsValidIdentifierChar(ch) {
			return fmt.Errorf("validation: identifier %q contains invalid character %q", id, ch)
		}
	}
	return nil
}
