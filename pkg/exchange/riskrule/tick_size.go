package riskrule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// TickSizeRule rejects limit prices that do not sit on the instrument's
// tick grid. Market orders carry no price and pass. Symbols without a
// configured tick have no rule.
type TickSizeRule struct {
	ticks map[string]decimal.Decimal
}

func NewTickSizeRule(ticks map[string]decimal.Decimal) *TickSizeRule {
	return &TickSizeRule{ticks: ticks}
}

func (r *TickSizeRule) Check(order *model.SubmitOrder) error {
	if order.Type != model.OrderTypeLimit {
		return nil
	}

	tick, ok := r.ticks[order.Symbol]
	if !ok || tick.IsZero() {
		return nil
	}

	if !order.Price.Mod(tick).IsZero() {
		return fmt.Errorf("price %s off tick %s", order.Price, tick)
	}
	return nil
}
