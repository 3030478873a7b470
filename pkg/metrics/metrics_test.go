package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()

	m.Connections.Inc()
	m.JoinRejections.WithLabelValues(ReasonSessionFull).Inc()
	m.Relayed.WithLabelValues("offer").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JoinRejections.WithLabelValues(ReasonSessionFull)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Relayed.WithLabelValues("offer")))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["camrelay_connections"])
	assert.True(t, names["camrelay_messages_relayed_total"])
	assert.True(t, names["go_goroutines"])
}
