package bootstrap

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	GrpcPort         string        `mapstructure:"GRPC_PORT"`
	RedisUrl         string        `mapstructure:"REDIS_URL"`
	MongoUri         string        `mapstructure:"MONGO_URI"`
	MongoDatabase    string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors      bool          `mapstructure:"LOCAL_CORS"`
	StorageMode      string        `mapstructure:"STORAGE_MODE"`
	BoardPreviewTTL  time.Duration `mapstructure:"BOARD_PREVIEW_TTL"`
	DefaultBoardSize int           `mapstructure:"DEFAULT_BOARD_SIZE"`
}

var defaults = map[string]any{
	"SERVER_PORT":        "8080",
	"GRPC_PORT":          "8082",
	"REDIS_URL":          "localhost:6379",
	"MONGO_URI":          "mongodb://localhost:27017",
	"MONGO_DATABASE":     "go_arena",
	"LOCAL_CORS":         false,
	"STORAGE_MODE":       StorageMongo,
	"BOARD_PREVIEW_TTL":  "24h",
	"DEFAULT_BOARD_SIZE": 19,
}

// Setup reads cfgPath (a .env file) when it exists; environment variables
// override both the file and the defaults.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			v.SetConfigFile(cfgPath)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.StorageMode != StorageMongo && cfg.StorageMode != StorageMemory {
		return nil, errors.New("STORAGE_MODE must be mongo or memory")
	}

	return &cfg, nil
}
