package migration

import (
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"github.com/streamvue/streamvue/internal/config"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	"github.com/streamvue/streamvue/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Dev dialects (sqlite, mysql) skip the versioned SQL and let
			// gorm derive the schema.
			if err := conn.AutoMigrate(
				&catalogdomain.Product{},
				&catalogdomain.ProductVariant{},
				&catalogdomain.DevicePricingRule{},
				&catalogdomain.BulkDiscountTier{},
				&rankdomain.RankTier{},
				&rankdomain.CustomerRank{},
				&coupondomain.Coupon{},
				&orderdomain.Order{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureRankTiers(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoProduct(conn)
		}
		return nil
	}),
)
