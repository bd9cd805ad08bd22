package helper

import "fmt"

// NewError wraps an error with the action that failed, e.g.
// NewError("load corpus", err) -> "failed to load corpus: ...".
func NewError(action string, err error) error {
	return fmt.Errorf("failed to %v: %w", action, err)
}
