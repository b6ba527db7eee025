package usage

import "errors"

var (
	ErrInvalidPeriod = errors.New("invalid billing period")
	ErrInvalidKind   = errors.New("invalid usage kind")
	ErrInvalidUser   = errors.New("user ID is required")
)
