// Package migration накатывает схему таблицы узлов хранилища.
package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// драйвер postgres и файловый источник регистрируются через init
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"coursekeeper/internal/app/server/config"
)

// Migrator - часть migrate.Migrate, которой мы пользуемся
type Migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Close() (source error, database error)
}

// MigrationEngine открывает Migrator; в тестах подменяется моком
type MigrationEngine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	cfg     *config.Config
	engine  MigrationEngine
	version uint
}

func NewMigration(conf *config.Config, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		cfg:    conf,
		engine: engine,
	}
}

func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Version - версия схемы после последнего успешного Up.
func (mg *Migration) Version() uint {
	return mg.version
}

// Up накатывает миграции из MIGRATIONS_PATH. ErrNoChange не ошибка,
// грязная схема после наката - ошибка.
func (mg *Migration) Up() (err error) {
	m, err := mg.engine("file://"+mg.cfg.DB.Migrations, mg.cfg.DB.DatabaseURI)
	if err != nil {
		return fmt.Errorf("migration engine: %w", err)
	}
	defer func() {
		serr, dberr := m.Close()
		err = errors.Join(err, wrapClose("source", serr), wrapClose("database", dberr))
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		mg.version = 0
	case err != nil:
		return fmt.Errorf("migration version: %w", err)
	case dirty:
		return fmt.Errorf("migration version %d is dirty", version)
	default:
		mg.version = version
	}
	return nil
}

func wrapClose(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("migration %s close: %w", what, err)
}
