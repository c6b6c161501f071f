package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const (
	defaultRunAddress = "localhost:8080"
	defaultLogLevel   = "info"
	defaultBackend    = BackendMemory
	defaultSQLitePath = "coursekeeper.db"
	defaultMigrations = "migrations"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env    string
	DB     DBConfig
	Server ServerConfig
	Logger LoggerConfig
	Store  StoreConfig
}

type DBConfig struct {
	DatabaseURI string `mapstructure:"database_uri"`
	Migrations  string `mapstructure:"migrations_path"`
}

type ServerConfig struct {
	RunAddress string `mapstructure:"run_address"`
}

type LoggerConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"store_backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Load читает .env (если есть), переменные окружения и значения по умолчанию.
func Load() (*Config, error) {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("failed to load %s: %v", envPath, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", EnvLocal)
	v.SetDefault("RUN_ADDRESS", defaultRunAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("STORE_BACKEND", defaultBackend)
	v.SetDefault("SQLITE_PATH", defaultSQLitePath)
	v.SetDefault("MIGRATIONS_PATH", defaultMigrations)

	config := &Config{
		Env: v.GetString("APP_ENV"),
		DB: DBConfig{
			DatabaseURI: v.GetString("DATABASE_URI"),
			Migrations:  v.GetString("MIGRATIONS_PATH"),
		},
		Server: ServerConfig{RunAddress: v.GetString("RUN_ADDRESS")},
		Logger: LoggerConfig{LogLevel: v.GetString("LOG_LEVEL")},
		Store: StoreConfig{
			Backend:    strings.ToLower(v.GetString("STORE_BACKEND")),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// MustLoad как Load, но завершает процесс при ошибке.
func MustLoad() *Config {
	config, err := Load()
	if err != nil {
		log.Fatalln(err)
	}
	return config
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("%w: unknown APP_ENV %q", ErrInvalidConfig, c.Env)
	}

	if c.Server.RunAddress == "" {
		return fmt.Errorf("%w: RUN_ADDRESS is empty", ErrInvalidConfig)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: SQLITE_PATH is empty", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.DB.DatabaseURI == "" {
			return fmt.Errorf("%w: DATABASE_URI is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_BACKEND %q", ErrInvalidConfig, c.Store.Backend)
	}

	return nil
}
