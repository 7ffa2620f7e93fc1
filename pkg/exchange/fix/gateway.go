package fixgateway

import (
	"context"
	"sync"

	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// OrderEntry is the slice of the engine the gateway drives.
type OrderEntry interface {
	SubmitOrder(ctx context.Context, req *model.SubmitOrder) (*model.SubmitResult, error)
	CancelOrder(ctx context.Context, req *model.CancelOrder) (*model.CancelResult, error)
}

// FixGateway terminates FIX 4.4 sessions and translates between the wire
// protocol and engine requests. It implements exchange.OrderGateway, so
// every committed order state flows back out as an ExecutionReport.
type FixGateway struct {
	cfg   *FixGatewayConfig
	app   *Application
	entry OrderEntry

	// ClOrdID -> session that submitted it
	sessionMapping sync.Map
	// ClOrdID -> engine order id, for cancel-by-OrigClOrdID
	orderMapping sync.Map
}

type FixGatewayConfig struct {
	ConfigFilepath string
}

func NewFixGateway(cfg *FixGatewayConfig) *FixGateway {
	return &FixGateway{
		cfg: cfg,
	}
}

func (s *FixGateway) AddExchangeInstance(e OrderEntry) {
	s.entry = e
}

func (s *FixGateway) Start(ctx context.Context) error {
	app, err := startApp(s.cfg.ConfigFilepath, s)
	if err != nil {
		zap.S().Errorw("start fix acceptor", "error", err)
		return err
	}
	s.app = app
	return nil
}

func (s *FixGateway) Stop() {
	if s.app != nil {
		stopApp(s.app)
	}
}

func (s *FixGateway) AddOrder(req *NewOrderSingle) {
	orderType := map[enum.OrdType]model.OrderType{
		enum.OrdType_LIMIT:  model.OrderTypeLimit,
		enum.OrdType_MARKET: model.OrderTypeMarket,
	}[req.OrdType]

	side := map[enum.Side]model.OrderSide{
		enum.Side_BUY:  model.OrderSideBuy,
		enum.Side_SELL: model.OrderSideSell,
	}[req.Side]

	s.sessionMapping.Store(req.ClOrdID, req.SessionID)

	result, err := s.entry.SubmitOrder(context.Background(), &model.SubmitOrder{
		ClientOrderID: req.ClOrdID,
		OwnerID:       req.Account,
		Symbol:        req.Symbol,
		Side:          side,
		Type:          orderType,
		Price:         req.Price,
		Quantity:      req.OrderQty.IntPart(),
		TransactTime:  req.TransactTime,
	})
	if err != nil {
		s.sessionMapping.Delete(req.ClOrdID)
		s.sendToSession(req.SessionID, rejectionReport(req, err.Error()))
		return
	}

	s.orderMapping.Store(req.ClOrdID, result.Order.OrderID)
}

func (s *FixGateway) CancelOrder(req *OrderCancelRequest) {
	orderID, ok := s.orderMapping.Load(req.OrigClOrdID)
	if !ok {
		s.sendToSession(req.SessionID, cancelRejectReport(req, "unknown original order"))
		return
	}

	_, err := s.entry.CancelOrder(context.Background(), &model.CancelOrder{
		OrderID: orderID.(string),
		OwnerID: req.Account,
	})
	if err != nil {
		s.sendToSession(req.SessionID, cancelRejectReport(req, err.Error()))
	}
}

// OnOrderReport implements exchange.OrderGateway. Reports for orders that
// did not come in over FIX have no session mapping and are skipped.
func (s *FixGateway) OnOrderReport(ctx context.Context, order model.Order) {
	v, ok := s.sessionMapping.Load(order.ClientOrderID)
	if !ok {
		return
	}
	sessionID := v.(quickfix.SessionID)

	go func() {
		if err := quickfix.SendToTarget(orderToExecutionReport(&order), sessionID); err != nil {
			zap.S().Warnw("send execution report", "order_id", order.OrderID, "error", err)
		}
	}()
}

func (s *FixGateway) sendToSession(sessionID quickfix.SessionID, msg quickfix.Messagable) {
	if err := quickfix.SendToTarget(msg, sessionID); err != nil {
		zap.S().Warnw("send to session", "session", sessionID.String(), "error", err)
	}
}
