package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	commoncfg "github.com/Emmanjr/health-monitoring/common/config"

	"github.com/spf13/viper"
)

// Config is shared by health-portal and health-alarm.
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	// RedisEnabled off runs the portal alone: changes fan out in-process
	// and no reading events reach health-alarm.
	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	MQTT struct {
		Enabled     bool
		TopicPrefix string // device alert topic is TopicPrefix + user id
		commoncfg.MQTTConfig
	}

	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}

	Streams struct {
		Readings      string // reading events, consumed by health-alarm
		ConsumerGroup string
		Consumer      string
		BatchSize     int
		Block         time.Duration
	}

	Alarm struct {
		MetricsAddr string // health-alarm probe and metrics listener
		Cache       struct {
			AlertKeyPrefix string // "health:user:"
			AlertSuffix    string // ":alerts"
			AlertTTL       int    // seconds
		}
	}

	Notify struct {
		WebhookURL string
		Timeout    time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads an optional config.yml from the working directory, then the
// environment. Environment keys are the upper-cased dotted names (db.host -> DB_HOST).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv(v, "http.addr", ":8080")

	cfg.DBEnabled = getEnv(v, "db.enabled", "true") == "true"
	cfg.Database.Host = getEnv(v, "db.host", "localhost")
	cfg.Database.Port = parseInt(getEnv(v, "db.port", "5432"), 5432)
	cfg.Database.User = getEnv(v, "db.user", "postgres")
	cfg.Database.Password = getEnv(v, "db.password", "postgres")
	cfg.Database.Database = getEnv(v, "db.name", "health")
	cfg.Database.SSLMode = getEnv(v, "db.sslmode", "disable")
	cfg.Database.MaxConns = parseInt(getEnv(v, "db.max_conns", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv(v, "db.max_idle", "5"), 5)

	cfg.RedisEnabled = getEnv(v, "redis.enabled", "true") == "true"
	cfg.Redis.Addr = getEnv(v, "redis.addr", "localhost:6379")
	cfg.Redis.Password = getEnv(v, "redis.password", "")
	cfg.Redis.DB = parseInt(getEnv(v, "redis.db", "0"), 0)

	cfg.MQTT.Enabled = getEnv(v, "mqtt.enabled", "false") == "true"
	cfg.MQTT.Broker = getEnv(v, "mqtt.broker", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv(v, "mqtt.client_id", "health-alarm")
	cfg.MQTT.Username = getEnv(v, "mqtt.username", "")
	cfg.MQTT.Password = getEnv(v, "mqtt.password", "")
	cfg.MQTT.QoS = byte(parseInt(getEnv(v, "mqtt.qos", "1"), 1))
	cfg.MQTT.TopicPrefix = getEnv(v, "mqtt.topic_prefix", "health/alerts/")

	cfg.Auth.JWTSecret = getEnv(v, "auth.jwt_secret", "dev-secret-change-me")
	cfg.Auth.TokenTTL = parseDuration(getEnv(v, "auth.token_ttl", "24h"), 24*time.Hour)

	cfg.Streams.Readings = getEnv(v, "streams.readings", "health:readings")
	cfg.Streams.ConsumerGroup = getEnv(v, "streams.consumer_group", "health-alarm")
	cfg.Streams.Consumer = getEnv(v, "streams.consumer", "health-alarm-1")
	cfg.Streams.BatchSize = parseInt(getEnv(v, "streams.batch_size", "10"), 10)
	cfg.Streams.Block = parseDuration(getEnv(v, "streams.block", "5s"), 5*time.Second)

	cfg.Alarm.MetricsAddr = getEnv(v, "alarm.metrics_addr", ":9091")
	cfg.Alarm.Cache.AlertKeyPrefix = getEnv(v, "cache.alert_prefix", "health:user:")
	cfg.Alarm.Cache.AlertSuffix = ":alerts"
	cfg.Alarm.Cache.AlertTTL = parseInt(getEnv(v, "cache.alert_ttl", "3600"), 3600)

	cfg.Notify.WebhookURL = getEnv(v, "notify.webhook_url", "")
	cfg.Notify.Timeout = parseDuration(getEnv(v, "notify.timeout", "10s"), 10*time.Second)

	cfg.Log.Level = getEnv(v, "log.level", "info")
	cfg.Log.Format = getEnv(v, "log.format", "json")

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret must not be empty")
	}
	if cfg.MQTT.QoS > 2 {
		return nil, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", cfg.MQTT.QoS)
	}
	return cfg, nil
}

func getEnv(v *viper.Viper, key, defaultValue string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
