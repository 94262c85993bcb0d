package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 启动时应用未执行的内嵌迁移
// 仅 server 调用；importpoints/remind/standings 假定 schema 已就绪
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载内嵌迁移失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移失败: %w", err)
	}

	before, _, _ := m.Version()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	after, dirty, _ := m.Version()
	switch {
	case dirty:
		logger.Warn("数据库迁移处于 dirty 状态，需要人工介入", zap.Uint("version", after))
	case after != before:
		logger.Info("数据库迁移完成", zap.Uint("from", before), zap.Uint("to", after))
	default:
		logger.Info("数据库 schema 已是最新", zap.Uint("version", after))
	}

	return nil
}
