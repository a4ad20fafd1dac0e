package config

import (
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the CLI configuration file.
type Config struct {
	Console ConsoleConf `toml:"console"` // Console - console connection settings.
	Logger  LogConf     `toml:"logger"`  // Logger - logger settings.
	MQTT    MQTTConf    `toml:"mqtt"`    // MQTT - bridge MQTT client settings.
	HTTP    HTTPConf    `toml:"http"`    // HTTP - bridge HTTP API settings.
}

// ConsoleConf describes how to reach the console.
type ConsoleConf struct {
	Host      string   `toml:"host"`       // Host - console address.
	Port      int      `toml:"port"`       // Port - console UDP port.
	Timeout   Duration `toml:"timeout"`    // Timeout - discovery read timeout.
	LocalAddr string   `toml:"local-addr"` // LocalAddr - optional local bind address.
}

// LogConf holds logger settings.
type LogConf struct {
	Level string `toml:"log-level"` // Level - debug, info, warn or error.
}

// MQTTConf holds bridge MQTT settings.
type MQTTConf struct {
	Enabled  bool   `toml:"enabled"`
	ClientID string `toml:"clientID"` // ClientID - empty means a random id.
	Broker   string `toml:"broker"`   // Broker - e.g. tcp://localhost:1883.
	User     string `toml:"user"`
	Password string `toml:"password"`
	Prefix   string `toml:"prefix"` // Prefix - topic prefix.
	Qos      byte   `toml:"qos"`
}

// HTTPConf holds bridge HTTP API settings.
type HTTPConf struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Duration is a time.Duration decoded from strings such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Console: ConsoleConf{
			Port:    4003,
			Timeout: Duration{5 * time.Second},
		},
		Logger: LogConf{Level: "info"},
		MQTT: MQTTConf{
			Broker: "tcp://localhost:1883",
			Prefix: "easyremote",
		},
		HTTP: HTTPConf{
			Listen: ":8080",
		},
	}
}

// NewConfig reads the file at path over the defaults. An empty path
// returns the defaults.
func NewConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
