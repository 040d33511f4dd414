package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:5000/allocate", cfg.AllocatorURL)
	assert.Equal(t, time.Duration(0), cfg.AllocatorTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50.0, cfg.DefaultSupplies)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "allocation-outcomes", cfg.KafkaOutcomeTopic)
	assert.False(t, cfg.PublishEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("ALLOCATOR_URL", "https://relief.example.org/allocate")
	t.Setenv("ALLOCATOR_TIMEOUT", "15s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DEFAULT_SUPPLIES", "120")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_OUTCOME_TOPIC", "custom-outcomes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://relief.example.org/allocate", cfg.AllocatorURL)
	assert.Equal(t, 15*time.Second, cfg.AllocatorTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 120.0, cfg.DefaultSupplies)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-outcomes", cfg.KafkaOutcomeTopic)
	assert.True(t, cfg.PublishEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidAllocatorTimeout(t *testing.T) {
	t.Setenv("ALLOCATOR_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOCATOR_TIMEOUT")
}

func TestLoad_NegativeAllocatorTimeout(t *testing.T) {
	t.Setenv("ALLOCATOR_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOCATOR_TIMEOUT")
}

func TestLoad_InvalidAllocatorURL(t *testing.T) {
	for _, raw := range []string{"127.0.0.1:5000/allocate", "ftp://host/allocate", "http://"} {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("ALLOCATOR_URL", raw)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "ALLOCATOR_URL")
		})
	}
}

func TestLoad_InvalidDefaultSupplies(t *testing.T) {
	t.Setenv("DEFAULT_SUPPLIES", "lots")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_SUPPLIES")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
