package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/alxandria/ledger/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// first loads a single row into dest, reporting false when no row matched.
func (r *Repository) first(ctx context.Context, dest interface{}, conds ...interface{}) (bool, error) {
	if err := r.db.WithContext(ctx).First(dest, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id uint64) (*models.Post, error) {
	var post models.Post
	found, err := r.first(ctx, &post, "post_id = ?", id)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

// Range returns up to limit posts with ids above startAfter, ascending.
func (r *PostRepository) Range(ctx context.Context, startAfter *uint64, limit int) ([]models.Post, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Order("post_id ASC").Limit(limit)
	if startAfter != nil {
		q = q.Where("post_id > ?", *startAfter)
	}
	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Save inserts or replaces a post
func (r *PostRepository) Save(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// Count returns the number of stored posts
func (r *PostRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}

// CountDeleted returns the number of redacted posts
func (r *PostRepository) CountDeleted(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("deleter IS NOT NULL").Count(&n).Error
	return n, err
}

// ConfigRepository provides access to the ledger config singleton
type ConfigRepository struct {
	*Repository
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(repo *Repository) *ConfigRepository {
	return &ConfigRepository{Repository: repo}
}

// Get retrieves the config, nil when the ledger is not instantiated
func (r *ConfigRepository) Get(ctx context.Context) (*models.LedgerConfig, error) {
	var cfg models.LedgerConfig
	found, err := r.first(ctx, &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// Save stores the config
func (r *ConfigRepository) Save(ctx context.Context, admin string) error {
	return r.db.WithContext(ctx).Save(models.NewLedgerConfig(admin)).Error
}

// ContractInfoRepository provides access to the contract version record
type ContractInfoRepository struct {
	*Repository
}

// NewContractInfoRepository creates a new contract info repository
func NewContractInfoRepository(repo *Repository) *ContractInfoRepository {
	return &ContractInfoRepository{Repository: repo}
}

// Get retrieves the contract info
func (r *ContractInfoRepository) Get(ctx context.Context) (*models.ContractInfo, error) {
	var info models.ContractInfo
	found, err := r.first(ctx, &info)
	if err != nil || !found {
		return nil, err
	}
	return &info, nil
}

// Save stores the contract info
func (r *ContractInfoRepository) Save(ctx context.Context, contract, version string) error {
	return r.db.WithContext(ctx).Save(models.NewContractInfo(contract, version)).Error
}

// SequenceRepository provides named counters
type SequenceRepository struct {
	*Repository
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(repo *Repository) *SequenceRepository {
	return &SequenceRepository{Repository: repo}
}

// Get returns the counter value, zero when it was never written
func (r *SequenceRepository) Get(ctx context.Context, name string) (uint64, error) {
	var seq models.Sequence
	found, err := r.first(ctx, &seq, "name = ?", name)
	if err != nil || !found {
		return 0, err
	}
	return seq.Value, nil
}

// Set stores the counter value
func (r *SequenceRepository) Set(ctx context.Context, name string, value uint64) error {
	return r.db.WithContext(ctx).Save(&models.Sequence{Name: name, Value: value}).Error
}

// StateRepository provides state-related database operations
type StateRepository struct {
	*Repository
}

// NewStateRepository creates a new state repository
func NewStateRepository(repo *Repository) *StateRepository {
	return &StateRepository{Repository: repo}
}

// Get retrieves the current state
func (r *StateRepository) Get(ctx context.Context) (*models.State, error) {
	var state models.State
	found, err := r.first(ctx, &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

// Update updates the state
func (r *StateRepository) Update(ctx context.Context, state *models.State) error {
	return r.db.WithContext(ctx).Save(state).Error
}

// TransactionRepository provides access to committed request records
type TransactionRepository struct {
	*Repository
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(repo *Repository) *TransactionRepository {
	return &TransactionRepository{Repository: repo}
}

// Create records a transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetByID retrieves a transaction by its id
func (r *TransactionRepository) GetByID(ctx context.Context, txID string) (*models.Transaction, error) {
	var tx models.Transaction
	found, err := r.first(ctx, &tx, "tx_id = ?", txID)
	if err != nil || !found {
		return nil, err
	}
	return &tx, nil
}

// BalanceRepository provides bank balance operations
type BalanceRepository struct {
	*Repository
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(repo *Repository) *BalanceRepository {
	return &BalanceRepository{Repository: repo}
}

// Get returns the balance of address in denom, zero when absent
func (r *BalanceRepository) Get(ctx context.Context, address, denom string) (uint64, error) {
	var bal models.Balance
	found, err := r.first(ctx, &bal, "address = ? AND denom = ?", address, denom)
	if err != nil || !found {
		return 0, err
	}
	return bal.Amount, nil
}

// All returns the non-zero balances of address ordered by denom
func (r *BalanceRepository) All(ctx context.Context, address string) ([]models.Balance, error) {
	var balances []models.Balance
	if err := r.db.WithContext(ctx).
		Where("address = ? AND amount > 0", address).
		Order("denom ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// Set stores the balance of address in denom
func (r *BalanceRepository) Set(ctx context.Context, address, denom string, amount uint64) error {
	return r.db.WithContext(ctx).Save(&models.Balance{Address: address, Denom: denom, Amount: amount}).Error
}

// TransferRepository provides access to the transfer log
type TransferRepository struct {
	*Repository
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(repo *Repository) *TransferRepository {
	return &TransferRepository{Repository: repo}
}

// Create records a transfer
func (r *TransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

// ListByTx returns the transfers of a transaction in insertion order
func (r *TransferRepository) ListByTx(ctx context.Context, txID string) ([]models.Transfer, error) {
	var transfers []models.Transfer
	if err := r.db.WithContext(ctx).
		Where("tx_id = ?", txID).
		Order("id ASC").
		Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}
