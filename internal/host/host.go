// Package host runs the post ledger against a database. It plays the part of
// the chain: it assigns block height and time, moves attached funds, applies
// the contract's bank messages and commits each request in one transaction.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alxandria/ledger/internal/cache"
	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/db"
	"github.com/alxandria/ledger/internal/models"
	"github.com/alxandria/ledger/pkg/config"
	"github.com/alxandria/ledger/pkg/logging"
	"github.com/alxandria/ledger/pkg/telemetry"
)

// ErrTxNotFound is returned when a transaction id is unknown
var ErrTxNotFound = errors.New("transaction not found")

// Options configures a Host
type Options struct {
	ChainID         string
	ContractAddress string
	Validator       contract.AddressValidator
	Cache           *cache.Cache
	Metrics         *telemetry.Metrics
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Host executes ledger requests
type Host struct {
	db       *db.DB
	contract *contract.Contract
	opts     Options
	logger   *zap.Logger

	// mu serializes mutations so heights are assigned in commit order.
	mu sync.Mutex
}

// Result describes a committed request
type Result struct {
	TxID      string             `json:"tx_id"`
	Height    uint64             `json:"height"`
	BlockTime time.Time          `json:"block_time"`
	Response  *contract.Response `json:"response"`
}

// HeadState is the ledger's current head
type HeadState struct {
	ChainID         string    `json:"chain_id"`
	Height          uint64    `json:"height"`
	BlockTime       time.Time `json:"block_time"`
	LastPostID      uint64    `json:"last_post_id"`
	PostCount       int64     `json:"post_count"`
	DeletedPosts    int64     `json:"deleted_posts"`
	Contract        string    `json:"contract,omitempty"`
	ContractVersion string    `json:"contract_version,omitempty"`
	Admin           string    `json:"admin,omitempty"`
	ContractAddress string    `json:"contract_address"`
}

// TxRecord is a committed transaction with its transfers
type TxRecord struct {
	TxID       string               `json:"tx_id"`
	Height     uint64               `json:"height"`
	Sender     string               `json:"sender"`
	Action     string               `json:"action"`
	Attributes []contract.Attribute `json:"attributes"`
	Transfers  []Transfer           `json:"transfers"`
	CreatedAt  time.Time            `json:"created_at"`
}

// Transfer is one recorded fund movement. Deposits have no From.
type Transfer struct {
	From   string        `json:"from,omitempty"`
	To     string        `json:"to"`
	Amount contract.Coin `json:"amount"`
}

// New creates a host
func New(database *db.DB, c *contract.Contract, opts Options) (*Host, error) {
	if opts.Validator == nil {
		return nil, fmt.Errorf("address validator is required")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if _, err := opts.Validator.AddrValidate(opts.ContractAddress); err != nil {
		return nil, fmt.Errorf("invalid contract address: %w", err)
	}
	return &Host{
		db:       database,
		contract: c,
		opts:     opts,
		logger:   logging.WithComponent("host"),
	}, nil
}

// Contract returns the hosted contract
func (h *Host) Contract() *contract.Contract {
	return h.contract
}

// Instantiate initializes the ledger
func (h *Host) Instantiate(ctx context.Context, sender string, funds contract.Coins, msg contract.InstantiateMsg) (*Result, error) {
	return h.run(ctx, contract.ActionInstantiate, sender, funds,
		func(ctx context.Context, deps contract.Deps, env contract.Env, info contract.MessageInfo) (*contract.Response, error) {
			return h.contract.Instantiate(ctx, deps, env, info, msg)
		})
}

// Execute runs a ledger message
func (h *Host) Execute(ctx context.Context, sender string, funds contract.Coins, msg contract.ExecuteMsg) (*Result, error) {
	action := msg.Action()
	if action == "" {
		action = "execute"
	}
	return h.run(ctx, action, sender, funds,
		func(ctx context.Context, deps contract.Deps, env contract.Env, info contract.MessageInfo) (*contract.Response, error) {
			return h.contract.Execute(ctx, deps, env, info, msg)
		})
}

// Migrate records a new contract version
func (h *Host) Migrate(ctx context.Context, sender string, msg contract.MigrateMsg) (*Result, error) {
	return h.run(ctx, contract.ActionMigrate, sender, nil,
		func(ctx context.Context, deps contract.Deps, env contract.Env, info contract.MessageInfo) (*contract.Response, error) {
			return h.contract.Migrate(ctx, deps, env, info, msg)
		})
}

type handler func(ctx context.Context, deps contract.Deps, env contract.Env, info contract.MessageInfo) (*contract.Response, error)

func (h *Host) run(ctx context.Context, action, sender string, funds contract.Coins, fn handler) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "host."+action,
		trace.WithAttributes(attribute.String("ledger.action", action), attribute.String("ledger.sender", sender)))
	defer span.End()

	res, err := h.commit(ctx, action, sender, funds, fn)
	if err != nil {
		outcome := outcomeOf(err)
		h.opts.Metrics.RecordRequest(ctx, action, outcome)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var cerr *contract.Error
		if errors.As(err, &cerr) {
			h.logger.Info("Request rejected",
				zap.String("action", action),
				zap.String("sender", sender),
				zap.String("code", string(cerr.Code)),
				zap.String("reason", cerr.Message))
		} else {
			h.logger.Error("Request failed",
				zap.String("action", action),
				zap.String("sender", sender),
				zap.Error(err))
		}
		return nil, err
	}

	if err := h.opts.Cache.Bump(ctx); err != nil {
		h.logger.Warn("Failed to bump cache generation", zap.Error(err))
	}

	h.opts.Metrics.RecordRequest(ctx, action, "ok")
	received, _ := funds.Normalize()
	for _, coin := range received {
		h.opts.Metrics.RecordFundsReceived(ctx, action, coin.Denom, coin.Amount)
	}
	for _, msg := range res.Response.Messages {
		for _, coin := range msg.Amount {
			h.opts.Metrics.RecordFundsSent(ctx, action, coin.Denom, coin.Amount)
		}
	}

	span.SetAttributes(attribute.String("ledger.tx_id", res.TxID), attribute.Int64("ledger.height", int64(res.Height)))
	h.logger.Info("Request committed",
		zap.String("action", action),
		zap.String("sender", sender),
		zap.String("tx_id", res.TxID),
		zap.Uint64("height", res.Height))

	return res, nil
}

func (h *Host) commit(ctx context.Context, action, sender string, funds contract.Coins, fn handler) (*Result, error) {
	sender, err := h.opts.Validator.AddrValidate(sender)
	if err != nil {
		return nil, err
	}
	if _, err := funds.Normalize(); err != nil {
		return nil, contract.ErrWrongPaymentAmount
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var res *Result
	err = h.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		states := db.NewStateRepository(db.NewRepository(tx))
		head, err := states.Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		block := h.nextBlock(head)

		txID := uuid.NewString()
		bank := NewBank(tx, txID, block.Height, block.Time)
		if err := bank.Deposit(ctx, h.opts.ContractAddress, funds); err != nil {
			return err
		}

		deps := contract.Deps{
			Storage: db.NewStore(tx),
			API:     h.opts.Validator,
			Querier: bank,
		}
		env := contract.Env{
			Block:    block,
			Contract: contract.ContractInfo{Address: h.opts.ContractAddress},
		}
		info := contract.MessageInfo{Sender: sender, Funds: funds}

		resp, err := fn(ctx, deps, env, info)
		if err != nil {
			return err
		}

		for _, msg := range resp.Messages {
			if err := bank.Send(ctx, h.opts.ContractAddress, msg.ToAddress, msg.Amount); err != nil {
				return err
			}
		}

		attrs := make([]models.TxAttribute, 0, len(resp.Attributes))
		for _, a := range resp.Attributes {
			attrs = append(attrs, models.TxAttribute{Key: a.Key, Value: a.Value})
		}
		txs := db.NewTransactionRepository(db.NewRepository(tx))
		if err := txs.Create(ctx, &models.Transaction{
			TxID:       txID,
			Height:     block.Height,
			Sender:     sender,
			Action:     action,
			Attributes: attrs,
			CreatedAt:  block.Time,
		}); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		if err := states.Update(ctx, models.NewState(block.ChainID, block.Height, block.Time)); err != nil {
			return fmt.Errorf("failed to update state: %w", err)
		}

		res = &Result{TxID: txID, Height: block.Height, BlockTime: block.Time, Response: resp}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// nextBlock returns the block after head. Block time never goes backwards
// and advances by at least a microsecond, the precision postgres keeps.
func (h *Host) nextBlock(head *models.State) contract.BlockInfo {
	now := h.opts.Clock().UTC().Truncate(time.Microsecond)
	var height uint64 = 1
	if head != nil {
		height = head.Height + 1
		prev := head.BlockTime.UTC()
		if !now.After(prev) {
			now = prev.Add(time.Microsecond)
		}
	}
	return contract.BlockInfo{Height: height, Time: now, ChainID: h.opts.ChainID}
}

// Query runs a read-only ledger query, served from the cache when enabled
func (h *Host) Query(ctx context.Context, msg contract.QueryMsg) (json.RawMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "host.query")
	defer span.End()

	key, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	out, err := h.opts.Cache.Remember(ctx, key, func() (json.RawMessage, error) {
		return h.contract.Query(ctx, h.queryDeps(ctx), msg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.opts.Metrics.RecordRequest(ctx, "query", outcomeOf(err))
		return nil, err
	}
	h.opts.Metrics.RecordRequest(ctx, "query", "ok")
	return out, nil
}

// GetPost returns the post with id, or nil when it does not exist
func (h *Host) GetPost(ctx context.Context, id uint64) (*contract.Post, error) {
	out, err := h.Query(ctx, contract.QueryMsg{Post: &contract.PostQuery{PostID: id}})
	if err != nil {
		return nil, err
	}
	var resp contract.PostResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode post response: %w", err)
	}
	return resp.Post, nil
}

// ListPosts returns a page of posts ascending by id
func (h *Host) ListPosts(ctx context.Context, limit *uint32, startAfter *uint64) ([]contract.Post, error) {
	out, err := h.Query(ctx, contract.QueryMsg{AllPosts: &contract.AllPostsQuery{Limit: limit, StartAfter: startAfter}})
	if err != nil {
		return nil, err
	}
	var resp contract.AllPostsResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode posts response: %w", err)
	}
	return resp.Posts, nil
}

// Balance returns the balances of addr
func (h *Host) Balance(ctx context.Context, addr string) (contract.Coins, error) {
	addr, err := h.opts.Validator.AddrValidate(addr)
	if err != nil {
		return nil, err
	}
	return NewBank(h.db.DB.WithContext(ctx), "", 0, time.Time{}).AllBalances(ctx, addr)
}

// HeadState returns the current head of the ledger
func (h *Host) HeadState(ctx context.Context) (*HeadState, error) {
	repo := db.NewRepository(h.db.DB)
	head := &HeadState{ChainID: h.opts.ChainID, ContractAddress: h.opts.ContractAddress}

	state, err := db.NewStateRepository(repo).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if state != nil {
		head.Height = state.Height
		head.BlockTime = state.BlockTime.UTC()
	}

	store := db.NewStore(h.db.DB)
	if head.LastPostID, err = store.LoadLastPostID(ctx); err != nil {
		return nil, fmt.Errorf("failed to load last post id: %w", err)
	}
	posts := db.NewPostRepository(repo)
	if head.PostCount, err = posts.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if head.DeletedPosts, err = posts.CountDeleted(ctx); err != nil {
		return nil, fmt.Errorf("failed to count deleted posts: %w", err)
	}
	version, err := store.LoadVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract version: %w", err)
	}
	if version != nil {
		head.Contract = version.Contract
		head.ContractVersion = version.Version
	}
	cfg, err := store.LoadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg != nil {
		head.Admin = cfg.Admin
	}
	return head, nil
}

// Transaction returns a committed transaction by id
func (h *Host) Transaction(ctx context.Context, txID string) (*TxRecord, error) {
	repo := db.NewRepository(h.db.DB)
	tx, err := db.NewTransactionRepository(repo).GetByID(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if tx == nil {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, txID)
	}
	transfers, err := db.NewTransferRepository(repo).ListByTx(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfers: %w", err)
	}

	rec := &TxRecord{
		TxID:       tx.TxID,
		Height:     tx.Height,
		Sender:     tx.Sender,
		Action:     tx.Action,
		Attributes: make([]contract.Attribute, 0, len(tx.Attributes)),
		Transfers:  make([]Transfer, 0, len(transfers)),
		CreatedAt:  tx.CreatedAt.UTC(),
	}
	for _, a := range tx.Attributes {
		rec.Attributes = append(rec.Attributes, contract.Attribute{Key: a.Key, Value: a.Value})
	}
	for _, t := range transfers {
		rec.Transfers = append(rec.Transfers, Transfer{From: t.From, To: t.To, Amount: contract.NewCoin(t.Amount, t.Denom)})
	}
	return rec, nil
}

func (h *Host) queryDeps(ctx context.Context) contract.Deps {
	tx := h.db.DB.WithContext(ctx)
	return contract.Deps{
		Storage: db.NewStore(tx),
		API:     h.opts.Validator,
		Querier: NewBank(tx, "", 0, time.Time{}),
	}
}

func outcomeOf(err error) string {
	var cerr *contract.Error
	if errors.As(err, &cerr) {
		return string(cerr.Code)
	}
	if errors.Is(err, ErrInsufficientFunds) {
		return "insufficient_funds"
	}
	return "internal"
}

// NewFromConfig builds the contract and host described by cfg
func NewFromConfig(database *db.DB, cfg *config.LedgerConfig, c *cache.Cache, m *telemetry.Metrics) (*Host, error) {
	params := contract.Params{
		ContractName:     cfg.ContractName,
		ContractVersion:  cfg.ContractVersion,
		Denom:            cfg.Denom,
		GatewayPrefix:    cfg.GatewayPrefix,
		PayoutAddress:    cfg.PayoutAddress,
		Instantiator:     cfg.Instantiator,
		SealDeletedPosts: cfg.SealDeletedPosts,
	}
	return New(database, contract.New(params), Options{
		ChainID:         cfg.ChainID,
		ContractAddress: cfg.ContractAddress,
		Validator:       NewBech32Validator(cfg.AddressPrefix),
		Cache:           c,
		Metrics:         m,
	})
}
