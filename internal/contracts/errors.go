package contracts

import (
	"errors"
	"fmt"
)

// ErrPartitionViolation signals a broken partition invariant: a record that
// falls inside no interval during the backfill join. This is an internal
// consistency failure, not bad input, and aborts the run.
var ErrPartitionViolation = errors.New("record matches no interval")

// ParseError reports an unparseable input row. Rows failing to parse are
// rejected and counted; the run continues with the remainder.
type ParseError struct {
	Line   int
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: field %q value %q: %s", e.Line, e.Field, e.Value, e.Reason)
}

// ConfigError reports a missing or invalid threshold. Fatal before any
// processing starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rules config: %s: %s", e.Field, e.Reason)
}
