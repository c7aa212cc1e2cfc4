package telemetry

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the ledger instruments. Instruments are created from the
// global meter provider, so they start exporting once Init installs one.
type Metrics struct {
	requests  metric.Int64Counter
	funds     metric.Int64Counter
	transfers metric.Int64Counter
}

// NewMetrics creates the ledger instruments
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requests, err := meter.Int64Counter("ledger.requests",
		metric.WithDescription("Ledger requests by action and outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create requests counter: %w", err)
	}
	funds, err := meter.Int64Counter("ledger.funds_received",
		metric.WithDescription("Native funds attached to committed requests"))
	if err != nil {
		return nil, fmt.Errorf("failed to create funds counter: %w", err)
	}
	transfers, err := meter.Int64Counter("ledger.funds_sent",
		metric.WithDescription("Native funds sent out by committed requests"))
	if err != nil {
		return nil, fmt.Errorf("failed to create transfers counter: %w", err)
	}

	return &Metrics{requests: requests, funds: funds, transfers: transfers}, nil
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(ctx context.Context, action, outcome string) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

// RecordFundsReceived adds attached funds of a committed request.
func (m *Metrics) RecordFundsReceived(ctx context.Context, action, denom string, amount uint64) {
	if m == nil {
		return
	}
	m.funds.Add(ctx, clampInt64(amount), metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("denom", denom),
	))
}

// RecordFundsSent adds funds transferred out of the contract.
func (m *Metrics) RecordFundsSent(ctx context.Context, action, denom string, amount uint64) {
	if m == nil {
		return
	}
	m.transfers.Add(ctx, clampInt64(amount), metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("denom", denom),
	))
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
