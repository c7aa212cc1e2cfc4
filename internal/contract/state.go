package contract

import (
	"context"
	"time"
)

// Config is the ledger singleton written at instantiation.
type Config struct {
	Admin string `json:"admin"`
}

// ContractVersion records which contract and version own the storage.
type ContractVersion struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

// Post is a ledger record.
type Post struct {
	PostID       uint64     `json:"post_id"`
	PostTitle    string     `json:"post_title"`
	ExternalID   string     `json:"external_id"`
	Text         string     `json:"text"`
	Tags         []string   `json:"tags"`
	Author       string     `json:"author"`
	CreationDate time.Time  `json:"creation_date"`
	LastEditDate *time.Time `json:"last_edit_date"`
	Deleter      *string    `json:"deleter"`
	Editor       *string    `json:"editor"`
	DeletionDate *time.Time `json:"deletion_date"`
}

// IsDeleted reports whether the post has been redacted.
func (p Post) IsDeleted() bool {
	return p.Deleter != nil
}

// Storage is the persistent key-value handle every operation runs against.
// Implementations are expected to be bound to the request's transaction.
type Storage interface {
	LoadConfig(ctx context.Context) (*Config, error)
	SaveConfig(ctx context.Context, cfg Config) error

	LoadVersion(ctx context.Context) (*ContractVersion, error)
	SaveVersion(ctx context.Context, v ContractVersion) error

	LoadLastPostID(ctx context.Context) (uint64, error)
	SaveLastPostID(ctx context.Context, id uint64) error

	// LoadPost returns nil, nil when the post does not exist.
	LoadPost(ctx context.Context, id uint64) (*Post, error)
	SavePost(ctx context.Context, post *Post) error
	// RangePosts returns up to limit posts with ids strictly greater than
	// startAfter (or from the first post), ascending by id.
	RangePosts(ctx context.Context, startAfter *uint64, limit int) ([]Post, error)
}

// AddressValidator converts free-text identities into canonical addresses.
type AddressValidator interface {
	AddrValidate(addr string) (string, error)
}

// BankQuerier reads native balances.
type BankQuerier interface {
	AllBalances(ctx context.Context, addr string) (Coins, error)
}

// Deps bundles the collaborators handed to every operation.
type Deps struct {
	Storage Storage
	API     AddressValidator
	Querier BankQuerier
}

// Env describes the block the request executes in.
type Env struct {
	Block    BlockInfo
	Contract ContractInfo
}

type BlockInfo struct {
	Height  uint64
	Time    time.Time
	ChainID string
}

type ContractInfo struct {
	Address string
}

// MessageInfo carries the verified sender and the funds attached to the request.
type MessageInfo struct {
	Sender string
	Funds  Coins
}
