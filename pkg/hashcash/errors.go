package hashcash

import (
	"errors"
	"fmt"
)

var (
	// ErrRange reports a bits value outside [MinBits, MaxBits] or a non-positive worker count.
	ErrRange = errors.New("value out of range")
	// ErrFormat reports stamp text that does not follow the stamp grammar.
	ErrFormat = errors.New("invalid stamp format")
	// ErrAlgorithm reports an unknown digest algorithm or one too short for the requested bits.
	ErrAlgorithm = errors.New("unsupported digest algorithm")
	// ErrExhausted reports that every counter was tried without finding a valid stamp.
	ErrExhausted = errors.New("proof of work exhausted")
	// ErrCancelled reports that minting stopped because its context was done.
	ErrCancelled = errors.New("operation cancelled")
)

// cancelled wraps the context error so callers can match either ErrCancelled
// or context.Canceled / context.DeadlineExceeded.
func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
