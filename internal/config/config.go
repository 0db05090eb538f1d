package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/harrylevesque/deviceadmin/internal/utils"
)

const (
	EnvPrefix = "DEVICEADMIN"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds runtime settings. Every key can be set as DEVICEADMIN_<KEY>
// in the environment, in a .env file, or in an optional config file.
type Config struct {
	DataDir    string `mapstructure:"DATA_DIR"`
	Store      string `mapstructure:"STORE"`
	DeviceID   string `mapstructure:"DEVICE_ID"` // app-provided id (ANDROID_ID, identifierForVendor)
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFile    string `mapstructure:"LOG_FILE"`
}

// Load reads configuration from .env, the environment and, when path is not
// empty, the config file at path (any format viper understands).
func Load(path string) (Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, utils.Wrap(utils.CodeInvalidConfig, "load .env", err)
	}

	v := viper.New()
	v.SetDefault("DATA_DIR", utils.DefaultDataDir())
	v.SetDefault("STORE", StoreFile)
	v.SetDefault("DEVICE_ID", "")
	v.SetDefault("LISTEN_ADDR", "127.0.0.1:8081")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, utils.Wrap(utils.CodeInvalidConfig, fmt.Sprintf("read config %s", path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, utils.Wrap(utils.CodeInvalidConfig, "decode config", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.DeviceID = strings.TrimSpace(cfg.DeviceID)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return utils.New(utils.CodeInvalidConfig, "invalid DATA_DIR: must not be empty")
	}
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return utils.New(utils.CodeInvalidConfig, fmt.Sprintf("invalid STORE %q: must be %q or %q", c.Store, StoreFile, StoreSQLite))
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return utils.New(utils.CodeInvalidConfig, "invalid LISTEN_ADDR: must not be empty")
	}
	return nil
}
