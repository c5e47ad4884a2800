package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterReusesExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := prometheus.CounterOpts{Name: "frames_test_total", Help: "test"}
	first, err := Register(reg, prometheus.NewCounter(opts), opts.Name)
	require.NoError(t, err)
	second, err := Register(reg, prometheus.NewCounter(opts), opts.Name)
	require.NoError(t, err)
	first.Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(second))

	_, err = Register(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: "frames_test_total", Help: "test"}), opts.Name)
	require.Error(t, err)
}

func TestRegisterNilRegisterer(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "frames_unregistered_total", Help: "test"})
	got, err := Register[prometheus.Counter](nil, c, "frames_unregistered_total")
	require.NoError(t, err)
	require.Equal(t, c, got)
}
