package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "health", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "health/alerts/", cfg.MQTT.TopicPrefix)

	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)

	assert.Equal(t, "health:readings", cfg.Streams.Readings)
	assert.Equal(t, "health-alarm", cfg.Streams.ConsumerGroup)
	assert.Equal(t, 10, cfg.Streams.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Streams.Block)

	assert.Equal(t, ":9091", cfg.Alarm.MetricsAddr)
	assert.Equal(t, "health:user:", cfg.Alarm.Cache.AlertKeyPrefix)
	assert.Equal(t, ":alerts", cfg.Alarm.Cache.AlertSuffix)
	assert.Equal(t, 3600, cfg.Alarm.Cache.AlertTTL)

	assert.Empty(t, cfg.Notify.WebhookURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "test-redis:6380")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("STREAMS_BLOCK", "bogus")
	t.Setenv("NOTIFY_WEBHOOK_URL", "https://hooks.example.com/alerts")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.Streams.Block)
	assert.Equal(t, "https://hooks.example.com/alerts", cfg.Notify.WebhookURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_RejectsBadQoS(t *testing.T) {
	os.Clearenv()
	t.Setenv("MQTT_QOS", "3")

	_, err := Load()
	assert.Error(t, err)
}
