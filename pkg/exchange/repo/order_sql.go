package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type OrderSQLRepo struct {
	db *gorm.DB
}

func NewOrderSQLRepo(db *gorm.DB) *OrderSQLRepo {
	return &OrderSQLRepo{
		db: db,
	}
}

func (s *OrderSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Upsert writes the order's latest state. Order events replay at-least-once
// from the stream, so a stale or duplicate delivery must converge on the
// newest row rather than fail.
func (s *OrderSQLRepo) Upsert(ctx context.Context, record *model.Order) (*model.Order, error) {
	return record, s.dbWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"filled", "status", "updated_at",
		}),
	}).Create(record).Error
}

func (s *OrderSQLRepo) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	var record model.Order
	err := s.dbWithContext(ctx).Where("order_id = ?", orderID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *OrderSQLRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*model.Order, error) {
	var records []*model.Order
	err := s.dbWithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("seq DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
