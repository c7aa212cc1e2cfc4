package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxandria/ledger/pkg/config"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(&config.TelemetryConfig{Enabled: false}, "0.1.0")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.Metrics)

	// nil instruments and a nil provider are safe to use
	ctx := context.Background()
	p.Metrics.RecordRequest(ctx, "create_post", "ok")
	p.Metrics.RecordFundsReceived(ctx, "create_post", "ujunox", 1)
	p.Shutdown()
	var none *Provider
	none.Shutdown()

	_, span := StartSpan(ctx, "noop")
	span.End()
}

func TestInitExportsLedgerMetrics(t *testing.T) {
	p, err := Init(&config.TelemetryConfig{
		Enabled:           true,
		PrometheusEnabled: true,
		ServiceName:       "alxandria-ledger-test",
	}, "0.1.0")
	require.NoError(t, err)
	t.Cleanup(p.Shutdown)
	require.NotNil(t, p.Metrics)

	ctx := context.Background()
	p.Metrics.RecordRequest(ctx, "create_post", "ok")
	p.Metrics.RecordFundsReceived(ctx, "create_post", "ujunox", 1_000_000)
	p.Metrics.RecordFundsSent(ctx, "edit_post", "ujunox", 500_000)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, mf := range families {
		for _, prefix := range []string{"ledger_requests", "ledger_funds_received", "ledger_funds_sent"} {
			if strings.HasPrefix(mf.GetName(), prefix) {
				found[prefix] = true
			}
		}
	}
	assert.True(t, found["ledger_requests"], "requests counter not exported")
	assert.True(t, found["ledger_funds_received"], "funds received counter not exported")
	assert.True(t, found["ledger_funds_sent"], "funds sent counter not exported")
}

func TestClampInt64(t *testing.T) {
	assert.Equal(t, int64(5), clampInt64(5))
	assert.Equal(t, int64(1<<63-1), clampInt64(1<<64-1))
}
