package field

import "errors"

// ErrInvertZero is a DomainError: zero has no multiplicative inverse.
var ErrInvertZero = errors.New("field: cannot invert zero in GF(M61)")
