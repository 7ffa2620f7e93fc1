package orderbook

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

// Order is a resting order as the book sees it: identity, price level and
// remaining quantity. Fill accounting, ownership and status live in the
// exchange model; the book only tracks what is still available to match.
type Order struct {
	ID    string
	Side  Side
	Price float64
	Qty   int64  // remaining quantity
	Seq   uint64 // admission sequence; FIFO within a price level

	cancelled bool
}

// PriceLevel is one aggregated row of a depth snapshot.
type PriceLevel struct {
	Price float64
	Qty   int64
	Count int
}
