package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/alxandria/ledger/pkg/logging"
	"github.com/alxandria/ledger/pkg/telemetry"
)

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MethodHandler is a function that handles a JSON-RPC method
type MethodHandler func(ctx *gin.Context, params json.RawMessage) (interface{}, error)

// JSONRPCHandler handles JSON-RPC requests
type JSONRPCHandler struct {
	methods map[string]MethodHandler
	logger  *zap.Logger
}

// NewJSONRPCHandler creates a new JSON-RPC handler
func NewJSONRPCHandler() *JSONRPCHandler {
	return &JSONRPCHandler{
		methods: make(map[string]MethodHandler),
		logger:  logging.WithComponent("jsonrpc"),
	}
}

// RegisterMethod registers a method handler
func (h *JSONRPCHandler) RegisterMethod(method string, handler MethodHandler) {
	h.methods[method] = handler
}

// Methods returns the registered method names
func (h *JSONRPCHandler) Methods() []string {
	names := make([]string, 0, len(h.methods))
	for name := range h.methods {
		names = append(names, name)
	}
	return names
}

// Handle handles a JSON-RPC request
func (h *JSONRPCHandler) Handle(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "jsonrpc.handle")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req JSONRPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, nil, &Error{Code: ErrParseError, Message: "Parse error", Data: err.Error()})
		return
	}
	span.SetAttributes(attribute.String("rpc.method", req.Method))

	if req.JSONRPC != "2.0" {
		h.sendError(c, req.ID, &Error{Code: ErrInvalidRequest, Message: "Invalid Request", Data: "invalid jsonrpc version"})
		return
	}

	handler, ok := h.methods[req.Method]
	if !ok {
		h.sendError(c, req.ID, &Error{Code: ErrMethodNotFound, Message: "Method not found", Data: fmt.Sprintf("method %s not found", req.Method)})
		return
	}

	result, err := handler(c, req.Params)
	if err != nil {
		apiErr := toAPIError(err)
		if apiErr.Code == ErrInternalError {
			span.RecordError(err)
			logger := h.logger
			if sc := span.SpanContext(); sc.HasTraceID() {
				logger = logging.WithTraceID(sc.TraceID().String()).With(zap.String("component", "jsonrpc"))
			}
			logger.Error("JSON-RPC method failed", zap.String("method", req.Method), zap.Error(err))
		} else {
			h.logger.Debug("JSON-RPC method rejected", zap.String("method", req.Method), zap.Error(err))
		}
		h.sendError(c, req.ID, apiErr)
		return
	}

	h.sendResponse(c, req.ID, result)
}

// sendResponse sends a successful JSON-RPC response
func (h *JSONRPCHandler) sendResponse(c *gin.Context, id interface{}, result interface{}) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// sendError sends an error JSON-RPC response
func (h *JSONRPCHandler) sendError(c *gin.Context, id interface{}, apiErr *Error) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Data:    apiErr.Data,
		},
	})
}
