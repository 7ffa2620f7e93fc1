package fixgateway

import (
	"time"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

type NewOrderSingle struct {
	SessionID quickfix.SessionID

	ClOrdID      string
	Account      string
	Symbol       string
	OrdType      enum.OrdType
	Side         enum.Side
	Price        decimal.Decimal
	OrderQty     decimal.Decimal
	TransactTime time.Time
}

type OrderCancelRequest struct {
	SessionID quickfix.SessionID

	ClOrdID     string
	OrigClOrdID string
	Account     string
	Symbol      string
	Side        enum.Side
}
