package models

import (
	"time"
)

// Balance is the native balance of one address in one denomination
type Balance struct {
	Address string `gorm:"primaryKey;type:varchar(128);column:address"`
	Denom   string `gorm:"primaryKey;type:varchar(64);column:denom"`
	Amount  uint64 `gorm:"not null;default:0;column:amount"`
}

// TableName specifies the table name for Balance
func (Balance) TableName() string {
	return "bank_balances"
}

// Transfer records native funds moved by a committed request. Deposits of
// attached funds have an empty From.
type Transfer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	TxID      string    `gorm:"type:varchar(36);not null;index;column:tx_id"`
	Height    uint64    `gorm:"not null;column:height"`
	From      string    `gorm:"type:varchar(128);column:from_address"`
	To        string    `gorm:"type:varchar(128);not null;index;column:to_address"`
	Denom     string    `gorm:"type:varchar(64);not null;column:denom"`
	Amount    uint64    `gorm:"not null;column:amount"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Transfer
func (Transfer) TableName() string {
	return "bank_transfers"
}

// All returns every model managed by the schema migration.
func All() []interface{} {
	return []interface{}{
		&State{},
		&LedgerConfig{},
		&ContractInfo{},
		&Sequence{},
		&Post{},
		&Transaction{},
		&Balance{},
		&Transfer{},
	}
}
