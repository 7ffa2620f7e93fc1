package exchange

import "errors"

var (
	// ErrInvalidOrder rejects malformed input before admission; no state is
	// touched.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientBalance rejects a buy whose notional exceeds the
	// owner's available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNotFound covers unknown order ids and owner mismatches on cancel.
	ErrNotFound = errors.New("order not found")

	// ErrNotCancellable is returned when a cancel reaches an order that is
	// already terminal. Callers racing against matching should re-fetch the
	// order status instead of retrying.
	ErrNotCancellable = errors.New("order not cancellable")

	// ErrBroadcastFailure marks best-effort downstream delivery failures.
	// Committed state is never rolled back because of one.
	ErrBroadcastFailure = errors.New("broadcast failure")
)
