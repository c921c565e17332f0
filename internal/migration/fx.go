package migration

import (
	auditdomain "github.com/keygatehq/keygate/internal/audit/domain"
	"github.com/keygatehq/keygate/internal/config"
	licensedomain "github.com/keygatehq/keygate/internal/license/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// SQL migrations target postgres; the embedded sqlite/mysql
		// deployments rely on the model schema.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&licensedomain.KeyRecord{},
				&auditdomain.AuditLog{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
