// Package rpcclient talks to a running ledger server over JSON-RPC.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/alxandria/ledger/internal/contract"
	"github.com/alxandria/ledger/internal/host"
	"github.com/alxandria/ledger/pkg/logging"
	"github.com/alxandria/ledger/pkg/telemetry"
)

// Server-defined error codes mirrored from the API.
const (
	codeContract          = -32000
	codeInsufficientFunds = -32001
	codeNotFound          = -32004
)

// RPCRequest is a JSON-RPC 2.0 request
type RPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// RPCResponse is a JSON-RPC 2.0 response
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is a JSON-RPC error object
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("RPC error %d: %s: %s", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Client calls the ledger JSON-RPC API
type Client struct {
	endpoint string
	http     *http.Client
	nextID   atomic.Int64
	logger   *zap.Logger
}

// New creates a client for endpoint
func New(endpoint string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	logger := logging.WithComponent("rpc-client")
	logger.Debug("RPC client initialized", zap.String("endpoint", endpoint))

	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}, nil
}

// Call invokes method and decodes its result into out
func (c *Client) Call(ctx context.Context, method string, params, out interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "rpc."+method)
	defer span.End()

	body, err := json.Marshal(RPCRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected HTTP status %d", method, resp.StatusCode)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		span.RecordError(rpcResp.Error)
		return decodeError(rpcResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return nil
}

// decodeError turns server errors back into the ledger's typed errors.
func decodeError(e *RPCError) error {
	switch e.Code {
	case codeContract:
		var data struct {
			Kind   contract.ErrorCode `json:"kind"`
			Detail string             `json:"detail"`
		}
		if err := json.Unmarshal(e.Data, &data); err == nil && data.Kind != "" {
			return &contract.Error{Code: data.Kind, Message: data.Detail}
		}
	case codeInsufficientFunds:
		return fmt.Errorf("%w: %s", host.ErrInsufficientFunds, e.Error())
	case codeNotFound:
		return fmt.Errorf("%w: %s", host.ErrTxNotFound, e.Error())
	}
	return e
}

type signed struct {
	Sender string         `json:"sender"`
	Funds  contract.Coins `json:"funds,omitempty"`
	Msg    interface{}    `json:"msg"`
}

// Instantiate calls ledger.instantiate
func (c *Client) Instantiate(ctx context.Context, sender string, funds contract.Coins, msg contract.InstantiateMsg) (*host.Result, error) {
	var res host.Result
	if err := c.Call(ctx, "ledger.instantiate", signed{Sender: sender, Funds: funds, Msg: msg}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Execute calls ledger.execute
func (c *Client) Execute(ctx context.Context, sender string, funds contract.Coins, msg contract.ExecuteMsg) (*host.Result, error) {
	var res host.Result
	if err := c.Call(ctx, "ledger.execute", signed{Sender: sender, Funds: funds, Msg: msg}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Migrate calls ledger.migrate
func (c *Client) Migrate(ctx context.Context, sender string, msg contract.MigrateMsg) (*host.Result, error) {
	var res host.Result
	params := map[string]interface{}{"sender": sender, "msg": msg}
	if err := c.Call(ctx, "ledger.migrate", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetPost calls ledger.get_post
func (c *Client) GetPost(ctx context.Context, id uint64) (*contract.Post, error) {
	var resp contract.PostResponse
	if err := c.Call(ctx, "ledger.get_post", map[string]uint64{"post_id": id}, &resp); err != nil {
		return nil, err
	}
	return resp.Post, nil
}

// ListPosts calls ledger.list_posts
func (c *Client) ListPosts(ctx context.Context, limit *uint32, startAfter *uint64) ([]contract.Post, error) {
	var resp contract.AllPostsResponse
	params := contract.AllPostsQuery{Limit: limit, StartAfter: startAfter}
	if err := c.Call(ctx, "ledger.list_posts", params, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

// HeadState calls ledger.head_state
func (c *Client) HeadState(ctx context.Context) (*host.HeadState, error) {
	var head host.HeadState
	if err := c.Call(ctx, "ledger.head_state", nil, &head); err != nil {
		return nil, err
	}
	return &head, nil
}

// Transaction calls ledger.get_transaction
func (c *Client) Transaction(ctx context.Context, txID string) (*host.TxRecord, error) {
	var rec host.TxRecord
	if err := c.Call(ctx, "ledger.get_transaction", map[string]string{"tx_id": txID}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Balance calls bank.get_balance
func (c *Client) Balance(ctx context.Context, addr string) (contract.Coins, error) {
	var resp struct {
		Balances contract.Coins `json:"balances"`
	}
	if err := c.Call(ctx, "bank.get_balance", map[string]string{"address": addr}, &resp); err != nil {
		return nil, err
	}
	return resp.Balances, nil
}
