package repo

import (
	"context"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type IOrder interface {
	Upsert(ctx context.Context, record *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, orderID string) (*model.Order, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*model.Order, error)
}

type ITrade interface {
	// Create inserts the trade if its trade_id is new; inserted reports
	// whether this delivery was the first.
	Create(ctx context.Context, record *model.Trade) (inserted bool, err error)
	BulkCreate(ctx context.Context, records []*model.Trade) ([]*model.Trade, error)
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]*model.Trade, error)
}

type IAccount interface {
	Upsert(ctx context.Context, record *model.Account) (*model.Account, error)
	GetByOwner(ctx context.Context, ownerID string) (*model.Account, error)
	List(ctx context.Context) ([]*model.Account, error)
}

type IPosition interface {
	Upsert(ctx context.Context, record *model.Position) (*model.Position, error)
	GetByOwnerSymbol(ctx context.Context, ownerID, symbol string) (*model.Position, error)
	List(ctx context.Context) ([]*model.Position, error)
}
