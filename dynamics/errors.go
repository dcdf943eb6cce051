package dynamics

import (
	"github.com/pkg/errors"
)

var (
	// ErrStateNotFound is returned when a state name or handle is not registered.
	ErrStateNotFound = errors.New("state not found")
	// ErrStateExists is returned when registering a name twice.
	ErrStateExists = errors.New("state already registered")
)

// NewStateNotFoundError returns an error wrapping ErrStateNotFound for the given name.
func NewStateNotFoundError(name string) error {
	return errors.Wrapf(ErrStateNotFound, "%q", name)
}

// NewStateSizeError is used when a value does not match the registered size of a state.
func NewStateSizeError(name string, expected, actual int) error {
	return errors.Errorf("state %q has %d rows but got %d", name, expected, actual)
}
