package autogram

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks every model construction failure.
	ErrConfig = errors.New("invalid autogram configuration")
	// ErrInvariant reports a model whose slot counts contradict each other.
	ErrInvariant = errors.New("model invariant violated")
	// ErrCountOutOfRange reports a count that cannot be spelled.
	ErrCountOutOfRange = errors.New("count outside spellable range")
	// ErrSearchExhausted reports that no unseen candidate exists within the randomization bounds.
	ErrSearchExhausted = errors.New("no unseen candidate within randomization bounds")
)

// ConfigError describes why a model could not be built.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrConfig, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrConfig, e.Field, e.Reason)
}

// Unwrap exposes ErrConfig and the underlying cause to errors.Is.
func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfig}
	}
	return []error{ErrConfig, e.Err}
}

func configErrorf(field string, cause error, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...), Err: cause}
}
