package registry

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrConfiguration is the base error for every registry misuse. All other
	// errors in this package wrap it, so callers can match the whole class
	// with errors.Is(err, registry.ErrConfiguration).
	ErrConfiguration = errors.New("notification type configuration error")

	// ErrEmptyTypeName is returned when a type name is empty.
	ErrEmptyTypeName = fmt.Errorf("%w: type name cannot be empty", ErrConfiguration)

	// ErrAlreadyRegistered is returned when registering a duplicate type name.
	ErrAlreadyRegistered = fmt.Errorf("%w: type already registered", ErrConfiguration)

	// ErrNotRegistered is returned when looking up or unregistering an unknown type.
	ErrNotRegistered = fmt.Errorf("%w: no such notification type", ErrConfiguration)

	// ErrInvalidConfig is returned when a type configuration fails validation.
	ErrInvalidConfig = fmt.Errorf("%w: invalid type configuration", ErrConfiguration)

	// ErrChoiceMissing signals internal inconsistency between the type map and
	// the ordered choice list. It should never happen in practice.
	ErrChoiceMissing = fmt.Errorf("%w: no such notification choice", ErrConfiguration)

	// ErrTemplateUnresolvable is returned when a config references an external
	// message template that cannot be loaded at registration time.
	ErrTemplateUnresolvable = fmt.Errorf("%w: message template cannot be resolved", ErrConfiguration)
)
