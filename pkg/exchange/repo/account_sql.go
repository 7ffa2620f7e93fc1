package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

type AccountSQLRepo struct {
	db *gorm.DB
}

func NewAccountSQLRepo(db *gorm.DB) *AccountSQLRepo {
	return &AccountSQLRepo{
		db: db,
	}
}

func (s *AccountSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *AccountSQLRepo) Upsert(ctx context.Context, record *model.Account) (*model.Account, error) {
	return record, s.dbWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"balance", "updated_at",
		}),
	}).Create(record).Error
}

func (s *AccountSQLRepo) List(ctx context.Context) ([]*model.Account, error) {
	var records []*model.Account
	err := s.dbWithContext(ctx).Find(&records).Error
	return records, err
}

func (s *AccountSQLRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Account, error) {
	var record model.Account
	err := s.dbWithContext(ctx).Where("owner_id = ?", ownerID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
