package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{
		db: db,
	}
}

func (s *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Create is idempotent on trade_id; a redelivered trade is a no-op and
// reports inserted == false.
func (s *TradeSQLRepo) Create(ctx context.Context, record *model.Trade) (bool, error) {
	res := s.dbWithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trade_id"}},
		DoNothing: true,
	}).Create(record)
	return res.RowsAffected > 0, res.Error
}

func (s *TradeSQLRepo) BulkCreate(ctx context.Context, records []*model.Trade) ([]*model.Trade, error) {
	if len(records) == 0 {
		return records, nil
	}
	return records, s.dbWithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trade_id"}},
		DoNothing: true,
	}).Create(records).Error
}

func (s *TradeSQLRepo) ListBySymbol(ctx context.Context, symbol string, limit int) ([]*model.Trade, error) {
	var records []*model.Trade
	err := s.dbWithContext(ctx).
		Where("symbol = ?", symbol).
		Order("seq DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
