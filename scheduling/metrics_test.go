package scheduling

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetricsCount(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveBooking("booked")
	m.ObserveBooking("booked")
	m.ObserveBooking("slot_taken")
	m.ObserveRelease("cancel", nil)
	m.ObserveRelease("cancel", errors.New("timeout"))

	assert.Equal(t, 2.0, counterValue(t, m.bookingsTotal.WithLabelValues("booked")))
	assert.Equal(t, 1.0, counterValue(t, m.bookingsTotal.WithLabelValues("slot_taken")))
	assert.Equal(t, 1.0, counterValue(t, m.releasesTotal.WithLabelValues("cancel", "error")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAvailability("ok")
		m.ObserveBooking("booked")
		m.ObserveTransition("approved")
		m.ObserveRelease("reject", nil)
	})
}
