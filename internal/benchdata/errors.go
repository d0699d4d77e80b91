package benchdata

import "errors"

var (
	ErrEmptyKey      = errors.New("benchmark key must not be empty")
	ErrNoBenches     = errors.New("entry has no benchmark results")
	ErrNegativeValue = errors.New("benchmark value must be a non-negative number")
	ErrOutOfOrder    = errors.New("entry date is earlier than the last recorded entry")
	ErrMalformed     = errors.New("malformed benchmark data")
)
