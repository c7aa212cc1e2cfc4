// Package ledger exposes the post ledger and its bank over JSON-RPC.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/host"
)

// ErrInvalidParams marks malformed method parameters
var ErrInvalidParams = errors.New("invalid params")

// API provides the ledger.* and bank.* methods
type API struct {
	host     *host.Host
	validate *validator.Validate
}

// NewAPI creates a new ledger API
func NewAPI(h *host.Host) *API {
	return &API{host: h, validate: validator.New()}
}

// SignedParams identify the sender of a state-changing request and the
// funds attached to it.
type SignedParams struct {
	Sender string          `json:"sender" validate:"required"`
	Funds  []contract.Coin `json:"funds" validate:"omitempty,dive"`
}

type instantiateParams struct {
	SignedParams
	Msg contract.InstantiateMsg `json:"msg"`
}

type executeParams struct {
	SignedParams
	Msg *contract.ExecuteMsg `json:"msg" validate:"required"`
}

type migrateParams struct {
	Sender string              `json:"sender" validate:"required"`
	Msg    contract.MigrateMsg `json:"msg"`
}

type queryParams struct {
	Msg *contract.QueryMsg `json:"msg" validate:"required"`
}

type getPostParams struct {
	PostID *uint64 `json:"post_id" validate:"required"`
}

type listPostsParams struct {
	Limit      *uint32 `json:"limit"`
	StartAfter *uint64 `json:"start_after"`
}

type getTransactionParams struct {
	TxID string `json:"tx_id" validate:"required,uuid"`
}

type getBalanceParams struct {
	Address string `json:"address" validate:"required"`
}

// decode strictly unmarshals params into dst and validates it. Missing
// params decode as an empty object.
func (a *API) decode(params json.RawMessage, dst interface{}) error {
	raw := bytes.TrimSpace(params)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := a.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Instantiate handles ledger.instantiate
func (a *API) Instantiate(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p instantiateParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	return a.host.Instantiate(ctx.Request.Context(), p.Sender, p.Funds, p.Msg)
}

// Execute handles ledger.execute
func (a *API) Execute(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p executeParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	return a.host.Execute(ctx.Request.Context(), p.Sender, p.Funds, *p.Msg)
}

// Migrate handles ledger.migrate
func (a *API) Migrate(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p migrateParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	return a.host.Migrate(ctx.Request.Context(), p.Sender, p.Msg)
}

// Query handles ledger.query
func (a *API) Query(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p queryParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	return a.host.Query(ctx.Request.Context(), *p.Msg)
}

// GetPost handles ledger.get_post
func (a *API) GetPost(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p getPostParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	post, err := a.host.GetPost(ctx.Request.Context(), *p.PostID)
	if err != nil {
		return nil, err
	}
	return contract.PostResponse{Post: post}, nil
}

// ListPosts handles ledger.list_posts
func (a *API) ListPosts(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p listPostsParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	posts, err := a.host.ListPosts(ctx.Request.Context(), p.Limit, p.StartAfter)
	if err != nil {
		return nil, err
	}
	return contract.AllPostsResponse{Posts: posts}, nil
}

// HeadState handles ledger.head_state
func (a *API) HeadState(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.host.HeadState(ctx.Request.Context())
}

// GetTransaction handles ledger.get_transaction
func (a *API) GetTransaction(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p getTransactionParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	return a.host.Transaction(ctx.Request.Context(), p.TxID)
}

// GetBalance handles bank.get_balance
func (a *API) GetBalance(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p getBalanceParams
	if err := a.decode(params, &p); err != nil {
		return nil, err
	}
	coins, err := a.host.Balance(ctx.Request.Context(), p.Address)
	if err != nil {
		return nil, err
	}
	return gin.H{"address": p.Address, "balances": coins}, nil
}
