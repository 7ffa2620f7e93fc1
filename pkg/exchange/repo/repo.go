package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	Order() IOrder
	Trade() ITrade
	Account() IAccount
	Position() IPosition
}

type Repo struct {
	exchangeDB *gorm.DB
}

func NewRepo(exchangeDB *gorm.DB) IRepo {
	return &Repo{
		exchangeDB: exchangeDB,
	}
}

func (r *Repo) Order() IOrder {
	return NewOrderSQLRepo(r.exchangeDB)
}

func (r *Repo) Trade() ITrade {
	return NewTradeSQLRepo(r.exchangeDB)
}

func (r *Repo) Account() IAccount {
	return NewAccountSQLRepo(r.exchangeDB)
}

func (r *Repo) Position() IPosition {
	return NewPositionSQLRepo(r.exchangeDB)
}
