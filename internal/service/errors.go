package service

import (
	"errors"
)

var (
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidTargetShape = errors.New("target must be a currency code or a list of currency codes")
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrRateNotFound       = errors.New("exchange rate not found")
)
