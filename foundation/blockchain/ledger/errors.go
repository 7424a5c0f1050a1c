package ledger

import (
	"errors"
	"fmt"
)

// Set of error variables for the ledger.
var (
	ErrEmptyChain = errors.New("ledger has no blocks")
	ErrNotFound   = errors.New("block not found")
	ErrIntegrity  = errors.New("chain integrity violated")
)

// IntegrityError identifies the block at which the chain stops being valid.
type IntegrityError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (ie *IntegrityError) Error() string {
	return fmt.Sprintf("block[%d]: %s", ie.Index, ie.Err)
}

// Is lets errors.Is match any IntegrityError against ErrIntegrity.
func (ie *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

// Unwrap provides access to the underlying violation.
func (ie *IntegrityError) Unwrap() error {
	return ie.Err
}
