package riskrule

import "github.com/joripage/exchange-core/pkg/exchange/model"

// RiskRule is a pre-trade check run before an order is admitted. A
// non-nil error rejects the order with no state touched.
type RiskRule interface {
	Check(order *model.SubmitOrder) error
}
