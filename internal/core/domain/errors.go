package domain

import "errors"

var (
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrCapacityBelowSold     = errors.New("capacity below tickets already sold")
	ErrInvalidRefund         = errors.New("invalid refund amount")
	ErrTokenNotFound         = errors.New("reservation token not found")
	ErrTokenExpired          = errors.New("reservation token expired")
	ErrAlreadyConfirmed      = errors.New("reservation already confirmed")
	ErrStorageUnavailable    = errors.New("storage unavailable")

	ErrInventoryExists   = errors.New("inventory already exists")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrInvalidCapacity   = errors.New("invalid capacity")
	ErrInvalidPrice      = errors.New("invalid unit price")
)
