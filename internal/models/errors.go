package models

import "errors"

var (
	ErrNoOrder         = errors.New("requested order does not exist")
	ErrInvalidOrder    = errors.New("order fields are missing or malformed")
	ErrInvalidAmount   = errors.New("bid amount must be a positive finite number")
	ErrAuctionClosed   = errors.New("auction for this order has already finished")
	ErrAlreadyResolved = errors.New("order has already been accepted or closed")
	ErrInvalidStatus   = errors.New("requested status change is not allowed")
	ErrForbidden       = errors.New("provided user does not have permission for this operation")
)
