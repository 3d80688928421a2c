package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MessagesApplied.WithLabelValues("BTC-USD").Inc()
	m.MessagesApplied.WithLabelValues("BTC-USD").Inc()
	m.SequenceGaps.WithLabelValues("BTC-USD").Inc()
	m.Reconnects.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, "gdaxbook_messages_applied_total")
	assert.Equal(t, float64(2), byName["gdaxbook_messages_applied_total"].Metric[0].GetCounter().GetValue())

	require.Contains(t, byName, "gdaxbook_feed_reconnects_total")
	assert.Equal(t, float64(1), byName["gdaxbook_feed_reconnects_total"].Metric[0].GetCounter().GetValue())
}
