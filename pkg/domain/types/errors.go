package types

import "github.com/m-mizutani/goerr/v2"

// ErrInvalidValue is returned when a string does not name a member of an enumeration.
var ErrInvalidValue = goerr.New("invalid enumeration value")
