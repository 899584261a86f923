package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector()
	require.NotNil(t, collector)
	assert.NotNil(t, collector.GetRegistry())
}

func TestRegisterCounter(t *testing.T) {
	collector := NewCollector()
	counter := collector.RegisterCounter("test_counter", "Test counter", []string{"namespace"})
	require.NotNil(t, counter)

	// Registering the same collector twice must fail
	err := collector.GetRegistry().Register(counter)
	assert.Error(t, err)
}

func TestRegisterGauge(t *testing.T) {
	collector := NewCollector()
	gauge := collector.RegisterGauge("test_gauge", "Test gauge", []string{"namespace"})
	require.NotNil(t, gauge)

	err := collector.GetRegistry().Register(gauge)
	assert.Error(t, err)
}

func TestRegisterHistogram(t *testing.T) {
	collector := NewCollector()
	buckets := []float64{0.1, 0.5, 1.0, 2.5, 5.0}
	histogram := collector.RegisterHistogram("test_histogram", "Test histogram", []string{"namespace"}, buckets)
	require.NotNil(t, histogram)

	err := collector.GetRegistry().Register(histogram)
	assert.Error(t, err)
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	collector := NewCollector()
	histogram := collector.RegisterHistogram("test_histogram_default", "Test histogram", []string{"namespace"}, nil)
	require.NotNil(t, histogram)

	err := collector.GetRegistry().Register(histogram)
	assert.Error(t, err)
}

func TestGetRegistry(t *testing.T) {
	collector := NewCollector()
	registry := collector.GetRegistry()
	require.NotNil(t, registry)

	_, err := registry.Gather()
	assert.NoError(t, err)
}
