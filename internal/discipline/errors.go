package discipline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ── Sentinel errors ──

var (
	ErrNotFound     = errors.New("record not found")
	ErrEmptyBatch   = errors.New("batch has no entries")
	ErrUnknownField = errors.New("unknown field")
)

// ValidationError carries field-level messages. It is always recoverable:
// the caller re-prompts the user with the messages.
type ValidationError struct {
	Fields FieldErrors `json:"fields"`
	First  string      `json:"first,omitempty"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if e.First != "" {
		return fmt.Sprintf("validation failed on %s: %s (%d field(s))", e.First, e.Fields[e.First], len(keys))
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// ConfigurationError reports a broken schema, catalog or gate table.
// It is fatal at startup.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "discipline configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError names the id that was absent from the working set.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %q not found", e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// BatchError reports a batch finalization that stopped part way. Entries
// before FailedIndex were persisted, the rest were not.
type BatchError struct {
	Total       int    `json:"total"`
	Persisted   int    `json:"persisted"`
	FailedIndex int    `json:"failedIndex"`
	FailedID    string `json:"failedId"`
	Err         error  `json:"-"`
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch finalize stopped at entry %d of %d (id %s): %d persisted, %d not persisted: %v",
		e.FailedIndex+1, e.Total, e.FailedID, e.Persisted, e.Remaining(), e.Err)
}

// Unwrap returns the persistence error unchanged.
func (e *BatchError) Unwrap() error { return e.Err }

// Remaining is the number of entries that were not persisted.
func (e *BatchError) Remaining() int { return e.Total - e.Persisted }
