package fixgateway

import (
	"github.com/google/uuid"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

var (
	ordStatusMapping = map[model.OrderStatus]enum.OrdStatus{
		model.OrderStatusPending:         enum.OrdStatus_PENDING_NEW,
		model.OrderStatusOpen:            enum.OrdStatus_NEW,
		model.OrderStatusPartiallyFilled: enum.OrdStatus_PARTIALLY_FILLED,
		model.OrderStatusFilled:          enum.OrdStatus_FILLED,
		model.OrderStatusCancelled:       enum.OrdStatus_CANCELED,
	}

	execTypeMapping = map[model.OrderStatus]enum.ExecType{
		model.OrderStatusPending:         enum.ExecType_PENDING_NEW,
		model.OrderStatusOpen:            enum.ExecType_NEW,
		model.OrderStatusPartiallyFilled: enum.ExecType_TRADE,
		model.OrderStatusFilled:          enum.ExecType_TRADE,
		model.OrderStatusCancelled:       enum.ExecType_CANCELED,
	}

	sideMapping = map[model.OrderSide]enum.Side{
		model.OrderSideBuy:  enum.Side_BUY,
		model.OrderSideSell: enum.Side_SELL,
	}
)

// orderToExecutionReport renders an order's committed state as a FIX 4.4
// ExecutionReport.
func orderToExecutionReport(order *model.Order) quickfix.Messagable {
	execReportMsg := executionreport.New(
		field.NewOrderID(order.OrderID),
		field.NewExecID(uuid.New().String()),
		field.NewExecType(execTypeMapping[order.Status]),
		field.NewOrdStatus(ordStatusMapping[order.Status]),
		field.NewSide(sideMapping[order.Side]),
		field.NewLeavesQty(leavesQty(order), 0),
		field.NewCumQty(decimal.NewFromInt(order.Filled), 0),
		field.NewAvgPx(order.Price, 2),
	)
	execReportMsg.SetClOrdID(order.ClientOrderID)
	execReportMsg.SetAccount(order.OwnerID)
	execReportMsg.SetSymbol(order.Symbol)
	execReportMsg.SetOrderQty(decimal.NewFromInt(order.Quantity), 0)
	execReportMsg.SetPrice(order.Price, 2)
	execReportMsg.SetTransactTime(order.UpdatedAt)
	return execReportMsg
}

// rejectionReport renders a refused admission: nothing rested, nothing
// filled, the reason carried in Text.
func rejectionReport(req *NewOrderSingle, reason string) quickfix.Messagable {
	execReportMsg := executionreport.New(
		field.NewOrderID("NONE"),
		field.NewExecID(uuid.New().String()),
		field.NewExecType(enum.ExecType_REJECTED),
		field.NewOrdStatus(enum.OrdStatus_REJECTED),
		field.NewSide(req.Side),
		field.NewLeavesQty(decimal.Zero, 0),
		field.NewCumQty(decimal.Zero, 0),
		field.NewAvgPx(decimal.Zero, 2),
	)
	execReportMsg.SetClOrdID(req.ClOrdID)
	execReportMsg.SetAccount(req.Account)
	execReportMsg.SetSymbol(req.Symbol)
	execReportMsg.SetOrderQty(req.OrderQty, 0)
	execReportMsg.SetText(reason)
	return execReportMsg
}

// cancelRejectReport answers an OrderCancelRequest that could not be
// honored.
func cancelRejectReport(req *OrderCancelRequest, reason string) quickfix.Messagable {
	execReportMsg := executionreport.New(
		field.NewOrderID("NONE"),
		field.NewExecID(uuid.New().String()),
		field.NewExecType(enum.ExecType_REJECTED),
		field.NewOrdStatus(enum.OrdStatus_REJECTED),
		field.NewSide(req.Side),
		field.NewLeavesQty(decimal.Zero, 0),
		field.NewCumQty(decimal.Zero, 0),
		field.NewAvgPx(decimal.Zero, 2),
	)
	execReportMsg.SetClOrdID(req.ClOrdID)
	execReportMsg.SetOrigClOrdID(req.OrigClOrdID)
	execReportMsg.SetAccount(req.Account)
	execReportMsg.SetText(reason)
	return execReportMsg
}

func leavesQty(order *model.Order) decimal.Decimal {
	if order.IsTerminal() {
		return decimal.Zero
	}
	return decimal.NewFromInt(order.Remaining())
}
