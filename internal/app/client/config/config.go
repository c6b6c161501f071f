package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"coursekeeper/internal/domain/course"
)

// Store backends available to the client.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

const (
	defaultServerAddress = "http://localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultBackend       = BackendRemote
	defaultConfigDir     = ".coursekeeper"
	defaultSQLiteFile    = "courses.db"
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	ServerAddress string `mapstructure:"server_address"`
	LogLevel      string `mapstructure:"log_level"`
	ConfigDir     string `mapstructure:"config_dir"`
	Backend       string `mapstructure:"store_backend"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	Collection    string `mapstructure:"collection_path"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	config, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return config
}

// Load читает .env, окружение и значения по умолчанию.
func Load() (*Config, error) {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", envPath, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("STORE_BACKEND", defaultBackend)
	v.SetDefault("COLLECTION_PATH", course.DefaultCollection)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	sqlitePath := v.GetString("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = filepath.Join(configDir, defaultSQLiteFile)
	}

	config := &Config{
		Env:           v.GetString("APP_ENV"),
		ServerAddress: v.GetString("SERVER_ADDRESS"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		ConfigDir:     configDir,
		Backend:       strings.ToLower(v.GetString("STORE_BACKEND")),
		SQLitePath:    sqlitePath,
		Collection:    v.GetString("COLLECTION_PATH"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRemote:
		if c.ServerAddress == "" {
			return fmt.Errorf("server_address не может быть пустым")
		}
	default:
		return fmt.Errorf("unknown store_backend %q", c.Backend)
	}
	if c.Collection == "" {
		return fmt.Errorf("collection_path не может быть пустым")
	}
	return nil
}

// EnsureDir создает директорию конфигурации, если ее нет.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.ConfigDir, 0o700)
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}

// EnvName maps a config file key (server_address) to its environment
// variable (SERVER_ADDRESS).
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
