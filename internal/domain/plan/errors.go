package plan

import "errors"

var (
	ErrUnknownTier     = errors.New("unknown plan tier")
	ErrInvalidInterval = errors.New("invalid billing interval")
	ErrPriceNotFound   = errors.New("plan price not found")
)
