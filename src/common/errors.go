package common

import "errors"

// Sentinel errors returned by the booking and payment paths. Handlers
// map these onto HTTP status codes, so they stay comparable with
// errors.Is across transaction boundaries.
var (
	ErrNotFound             = errors.New("record not found")
	ErrNotAvailable         = errors.New("no slots available")
	ErrAlreadyInCart        = errors.New("raffle is already in cart")
	ErrNotInCart            = errors.New("raffle is not in cart")
	ErrDuplicateEntry       = errors.New("user already has an entry for this raffle")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrRaffleLocked         = errors.New("raffle can no longer be modified")
	ErrTransactionProcessed = errors.New("transaction has already been processed")
	ErrPromoUnavailable     = errors.New("promo code is not available")
	ErrPromoExpired         = errors.New("promo code has expired")
	ErrPromoExhausted       = errors.New("promo code has no uses left")
	ErrPromoNotAllowed      = errors.New("promo code is not available for this user")
)
