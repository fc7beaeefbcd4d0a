package entities

import "errors"

var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidPair       = errors.New("invalid currency pair")
	ErrSameCurrency      = errors.New("origin and destination must differ")
	ErrNonPositiveRate   = errors.New("rate must be positive")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrHistoryDisabled   = errors.New("history storage is not configured")
)
