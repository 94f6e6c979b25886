package migration

import (
	"context"

	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/seed"
	"github.com/smallbiznis/haccp/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if cfg.DBType == db.TypePostgres {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := AutoMigrate(conn); err != nil {
			return err
		}

		created, err := seed.EnsureReferenceData(context.Background(), conn)
		if err != nil {
			return err
		}
		if created > 0 {
			log.Info("seeded reference data", zap.Int("records", created))
		}
		return nil
	}),
)
