package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// NewPostgres создаёт подключение к PostgreSQL с заданным DSN.
func NewPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return conn, nil
}

// newMigrator собирает golang-migrate поверх уже открытого соединения.
func newMigrator(conn *sqlx.DB, migrationsDir string) (*migrate.Migrate, error) {
	driver, err := migratepg.WithInstance(conn.DB, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось создать драйвер миграций: %w", err)
	}

	absDir, err := filepath.Abs(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("postgres: некорректный каталог миграций %s: %w", migrationsDir, err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(absDir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось инициализировать миграции: %w", err)
	}
	return m, nil
}

// RunMigrations применяет все новые миграции из каталога.
func RunMigrations(conn *sqlx.DB, migrationsDir string) error {
	m, err := newMigrator(conn, migrationsDir)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: ошибка применения миграций: %w", err)
	}
	return nil
}

// RollbackMigrations откатывает steps последних миграций.
func RollbackMigrations(conn *sqlx.DB, migrationsDir string, steps int) error {
	if steps <= 0 {
		steps = 1
	}

	m, err := newMigrator(conn, migrationsDir)
	if err != nil {
		return err
	}

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: ошибка отката миграций: %w", err)
	}
	return nil
}

// MigrationVersion возвращает текущую версию схемы.
func MigrationVersion(conn *sqlx.DB, migrationsDir string) (uint, bool, error) {
	m, err := newMigrator(conn, migrationsDir)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
