package postgres

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/sanosuguru/go-hotel-room-reservation/internal/pkg/logger"
)

// RunMigrations はhotels/rooms/bookingsスキーマのマイグレーションを適用する。
// 適用済みの場合は何もしない。
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("マイグレーションドライバー作成エラー: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("マイグレーションインスタンス作成エラー: %w", err)
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Get().Debug("マイグレーションは適用済み")
			return nil
		}
		return fmt.Errorf("マイグレーション実行エラー: %w", err)
	}

	logger.Get().Info("マイグレーションを適用した")
	return nil
}
