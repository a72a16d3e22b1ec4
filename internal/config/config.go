package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration of the purifier service.
// Values come from configs/config.yml and can be overridden by
// PURIFIER_* environment variables (PURIFIER_HTTP_PORT, PURIFIER_MQTT_ENABLED, ...).
type Config struct {
	Accessory AccessoryConfig `mapstructure:"accessory"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DBConfig        `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Watch     WatchConfig     `mapstructure:"watch"`
	HomeKit   HomeKitConfig   `mapstructure:"homekit"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
}

// AccessoryConfig names the single accessory.
type AccessoryConfig struct {
	Name         string `mapstructure:"name"`
	SerialNumber string `mapstructure:"serial_number"`
	Firmware     string `mapstructure:"firmware"`
}

// HTTPConfig contains the REST API listener settings.
type HTTPConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// DBConfig contains the SQLite journal settings.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// AuthConfig contains token settings for controller accounts.
type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// WatchConfig controls the derived-state watcher.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// HomeKitConfig contains HAP server settings.
type HomeKitConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Pin         string `mapstructure:"pin"`
	Addr        string `mapstructure:"addr"`
	StoragePath string `mapstructure:"storage_path"`
}

// MQTTConfig contains broker settings for the MQTT bridge.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	QoS         int    `mapstructure:"qos"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

const envPrefix = "PURIFIER"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// placeholderSigningKeys are sample values that must never sign tokens.
var placeholderSigningKeys = map[string]bool{
	"change-me": true,
	"changeme":  true,
	"secret":    true,
}

const minSigningKeyLen = 16

func setDefaults(v *viper.Viper) {
	v.SetDefault("accessory.name", "OneLife X")
	v.SetDefault("accessory.serial_number", "OLX-0001")
	v.SetDefault("accessory.firmware", "1.0.0")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.path", "purifier.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// no usable default; set in config.yml or PURIFIER_AUTH_SIGNING_KEY
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("watch.interval", time.Second)

	v.SetDefault("homekit.enabled", false)
	v.SetDefault("homekit.pin", "00102003")
	v.SetDefault("homekit.addr", ":12345")
	v.SetDefault("homekit.storage_path", "hap")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "onelife-purifier")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.topic_prefix", "onelife")
}

// Load reads config.yml from dir (if present), applies defaults and
// environment overrides, and validates the result.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Accessory.Name) == "" {
		return fmt.Errorf("%w: accessory.name is required", ErrInvalidConfig)
	}
	key := strings.TrimSpace(c.Auth.SigningKey)
	switch {
	case key == "":
		return fmt.Errorf("%w: auth.signing_key must be set", ErrInvalidConfig)
	case placeholderSigningKeys[strings.ToLower(key)]:
		return fmt.Errorf("%w: auth.signing_key is a placeholder value", ErrInvalidConfig)
	case len(key) < minSigningKeyLen:
		return fmt.Errorf("%w: auth.signing_key must be at least %d characters", ErrInvalidConfig, minSigningKeyLen)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("%w: watch.interval must be positive", ErrInvalidConfig)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("%w: mqtt.qos must be 0, 1 or 2", ErrInvalidConfig)
	}
	if c.HomeKit.Enabled && len(c.HomeKit.Pin) != 8 {
		return fmt.Errorf("%w: homekit.pin must be 8 digits", ErrInvalidConfig)
	}
	return nil
}
