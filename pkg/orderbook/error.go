package orderbook

import "errors"

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("duplicate order id")
	ErrInvalidPrice   = errors.New("invalid order price")
)
