package offer

import "errors"

var (
	ErrOfferNotFound   = errors.New("offer not found")
	ErrInvalidOffer    = errors.New("invalid offer")
	ErrOfferCodeExists = errors.New("offer code already exists")
)
