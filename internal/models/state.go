package models

import (
	"time"

	"gorm.io/datatypes"
)

// singletonID is the primary key of every single-row table.
const singletonID = 1

// State is the host's block head: height and time of the last committed request
type State struct {
	ID        uint8     `gorm:"primaryKey;autoIncrement:false;column:id"`
	ChainID   string    `gorm:"type:varchar(64);not null;column:chain_id"`
	Height    uint64    `gorm:"not null;column:height"`
	BlockTime time.Time `gorm:"not null;column:block_time"`
}

// TableName specifies the table name for State
func (State) TableName() string {
	return "ledger_state"
}

// NewState returns the singleton state row
func NewState(chainID string, height uint64, blockTime time.Time) *State {
	return &State{ID: singletonID, ChainID: chainID, Height: height, BlockTime: blockTime}
}

// LedgerConfig holds the administrator identity
type LedgerConfig struct {
	ID    uint8  `gorm:"primaryKey;autoIncrement:false;column:id"`
	Admin string `gorm:"type:varchar(128);not null;column:admin"`
}

// TableName specifies the table name for LedgerConfig
func (LedgerConfig) TableName() string {
	return "ledger_config"
}

// NewLedgerConfig returns the singleton config row
func NewLedgerConfig(admin string) *LedgerConfig {
	return &LedgerConfig{ID: singletonID, Admin: admin}
}

// ContractInfo records the contract name and version owning the storage
type ContractInfo struct {
	ID       uint8  `gorm:"primaryKey;autoIncrement:false;column:id"`
	Contract string `gorm:"type:varchar(128);not null;column:contract"`
	Version  string `gorm:"type:varchar(64);not null;column:version"`
}

// TableName specifies the table name for ContractInfo
func (ContractInfo) TableName() string {
	return "ledger_contract_info"
}

// NewContractInfo returns the singleton contract info row
func NewContractInfo(contract, version string) *ContractInfo {
	return &ContractInfo{ID: singletonID, Contract: contract, Version: version}
}

// Sequence is a named monotonic counter
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(32);column:name"`
	Value uint64 `gorm:"not null;column:value"`
}

// TableName specifies the table name for Sequence
func (Sequence) TableName() string {
	return "ledger_sequences"
}

// SequenceLastPostID names the post id counter.
const SequenceLastPostID = "last_post_id"

// TxAttribute is a response attribute stored with its transaction
type TxAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Transaction records a committed request
type Transaction struct {
	TxID       string                           `gorm:"primaryKey;type:varchar(36);column:tx_id"`
	Height     uint64                           `gorm:"not null;uniqueIndex;column:height"`
	Sender     string                           `gorm:"type:varchar(128);not null;index;column:sender"`
	Action     string                           `gorm:"type:varchar(32);not null;column:action"`
	Attributes datatypes.JSONSlice[TxAttribute] `gorm:"column:attributes"`
	CreatedAt  time.Time                        `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "ledger_txs"
}
