package riskrule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

// PriceBand is the allowed limit-price range for one symbol.
type PriceBand struct {
	Floor decimal.Decimal
	Ceil  decimal.Decimal
}

// LimitPriceRule rejects limit prices outside the configured band.
type LimitPriceRule struct {
	bands map[string]PriceBand
}

func NewLimitPriceRule(bands map[string]PriceBand) *LimitPriceRule {
	return &LimitPriceRule{bands: bands}
}

func (r *LimitPriceRule) Check(order *model.SubmitOrder) error {
	if order.Type != model.OrderTypeLimit {
		return nil
	}

	band, ok := r.bands[order.Symbol]
	if !ok {
		return nil
	}

	if !band.Floor.IsZero() && order.Price.LessThan(band.Floor) {
		return fmt.Errorf("price %s below floor %s", order.Price, band.Floor)
	}
	if !band.Ceil.IsZero() && order.Price.GreaterThan(band.Ceil) {
		return fmt.Errorf("price %s above ceiling %s", order.Price, band.Ceil)
	}
	return nil
}
