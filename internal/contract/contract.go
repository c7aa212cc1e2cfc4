// Package contract implements the post ledger: a paid, append-mostly record
// of posts with soft deletion and an admin treasury sweep.
//
// Every operation receives its storage, address validation and bank access
// through Deps and returns a Response that the host applies atomically. An
// operation that returns an error must be discarded by the host together with
// any writes it made through Deps.Storage.
package contract

import (
	"context"
	"fmt"
)

const (
	DefaultContractName    = "rome-contract"
	DefaultContractVersion = "0.1.0"
	DefaultDenom           = "ujunox"
	DefaultGatewayPrefix   = "https://alxandria.infura-ipfs.io/ipfs/"
	DefaultPayoutAddress   = "juno1ggtuwvungvx5t3awqpcqvxxvgt7gvwdkanuwtm"
	DefaultAdmin           = "juno1w5aespcyddns7y696q9wlch4ehflk2wglu9vv4"
)

// Fee schedule in base units of the native denomination.
const (
	CreatePostFee = 1_000_000
	EditPostFee   = 2_000_000
	DeletePostFee = 10_000_000
	EditReward    = 500_000
)

// Deletion sentinels.
const (
	DeletedText = "This post has been deleted."
	DeletedTag  = "Deleted"
)

// Response attribute values.
const (
	ActionInstantiate = "instantiate"
	ActionCreatePost  = "create_post"
	ActionEditPost    = "edit_post"
	ActionDeletePost  = "delete_post"
	ActionWithdraw    = "withdraw"
	ActionMigrate     = "migration"
)

// Params are the deployment constants of a ledger.
type Params struct {
	ContractName    string
	ContractVersion string
	Denom           string
	GatewayPrefix   string
	PayoutAddress   string
	// Instantiator, when set, is the only sender allowed to instantiate.
	Instantiator string
	// SealDeletedPosts rejects edits and repeated deletes of redacted posts.
	SealDeletedPosts bool
}

// DefaultParams returns the parameters of the production deployment.
func DefaultParams() Params {
	return Params{
		ContractName:    DefaultContractName,
		ContractVersion: DefaultContractVersion,
		Denom:           DefaultDenom,
		GatewayPrefix:   DefaultGatewayPrefix,
		PayoutAddress:   DefaultPayoutAddress,
		Instantiator:    DefaultAdmin,
	}
}

// Contract is the post ledger.
type Contract struct {
	params Params
}

// New creates a contract with the given parameters
func New(params Params) *Contract {
	return &Contract{params: params}
}

// Params returns the contract parameters.
func (c *Contract) Params() Params {
	return c.params
}

func (c *Contract) fee(amount uint64) *Coin {
	coin := NewCoin(amount, c.params.Denom)
	return &coin
}

// Instantiate writes the config, version and counter singletons.
func (c *Contract) Instantiate(ctx context.Context, deps Deps, env Env, info MessageInfo, msg InstantiateMsg) (*Response, error) {
	if c.params.Instantiator != "" && info.Sender != c.params.Instantiator {
		return nil, ErrUnauthorized
	}

	existing, err := deps.Storage.LoadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyInstantiated
	}

	requested := info.Sender
	if msg.Admin != nil {
		requested = *msg.Admin
	}
	admin, err := deps.API.AddrValidate(requested)
	if err != nil {
		return nil, err
	}

	if err := deps.Storage.SaveVersion(ctx, ContractVersion{
		Contract: c.params.ContractName,
		Version:  c.params.ContractVersion,
	}); err != nil {
		return nil, fmt.Errorf("failed to save contract version: %w", err)
	}
	if err := deps.Storage.SaveConfig(ctx, Config{Admin: admin}); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	if err := deps.Storage.SaveLastPostID(ctx, 0); err != nil {
		return nil, fmt.Errorf("failed to save last post id: %w", err)
	}

	return NewResponse().
		AddAttribute("action", ActionInstantiate).
		AddAttribute("admin", admin), nil
}

// Migrate moves the storage to the current contract version. Only the admin
// may migrate, and only from a contract of the same name.
func (c *Contract) Migrate(ctx context.Context, deps Deps, env Env, info MessageInfo, _ MigrateMsg) (*Response, error) {
	cfg, err := c.loadConfig(ctx, deps.Storage)
	if err != nil {
		return nil, err
	}
	if info.Sender != cfg.Admin {
		return nil, ErrUnauthorized
	}

	ver, err := deps.Storage.LoadVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract version: %w", err)
	}
	if ver == nil || ver.Contract != c.params.ContractName {
		return nil, ErrMigrationMismatch
	}

	if err := deps.Storage.SaveVersion(ctx, ContractVersion{
		Contract: c.params.ContractName,
		Version:  c.params.ContractVersion,
	}); err != nil {
		return nil, fmt.Errorf("failed to save contract version: %w", err)
	}

	return NewResponse().
		AddAttribute("action", ActionMigrate).
		AddAttribute("version", c.params.ContractVersion).
		AddAttribute("contract", c.params.ContractName), nil
}

func (c *Contract) loadConfig(ctx context.Context, store Storage) (*Config, error) {
	cfg, err := store.LoadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg == nil {
		return nil, ErrNotInstantiated
	}
	return cfg, nil
}
