package keybackend

import "errors"

// ErrInvalidToken is returned when a presented token is not in the set.
var ErrInvalidToken = errors.New("invalid token")
