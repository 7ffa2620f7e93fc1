package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type PositionSQLRepo struct {
	db *gorm.DB
}

func NewPositionSQLRepo(db *gorm.DB) *PositionSQLRepo {
	return &PositionSQLRepo{
		db: db,
	}
}

func (s *PositionSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *PositionSQLRepo) Upsert(ctx context.Context, record *model.Position) (*model.Position, error) {
	return record, s.dbWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quantity", "avg_price", "realized_pnl", "updated_at",
		}),
	}).Create(record).Error
}

func (s *PositionSQLRepo) List(ctx context.Context) ([]*model.Position, error) {
	var records []*model.Position
	err := s.dbWithContext(ctx).Find(&records).Error
	return records, err
}

func (s *PositionSQLRepo) GetByOwnerSymbol(ctx context.Context, ownerID, symbol string) (*model.Position, error) {
	var record model.Position
	err := s.dbWithContext(ctx).
		Where("owner_id = ? AND symbol = ?", ownerID, symbol).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
