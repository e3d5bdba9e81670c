package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	"gorm.io/gorm"
)

const demoProductSlug = "iptv-premium"

// EnsureRankTiers seeds the default loyalty ladder. Existing tiers are
// never touched, so operator edits survive restarts.
func EnsureRankTiers(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	tiers := []rankdomain.RankTier{
		{Code: "bronze", Name: "Bronze", MinPoints: 0, DiscountPercentage: 0},
		{Code: "silver", Name: "Silver", MinPoints: 500, DiscountPercentage: 3},
		{Code: "gold", Name: "Gold", MinPoints: 2000, DiscountPercentage: 5},
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&rankdomain.RankTier{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for i := range tiers {
			tiers[i].ID = node.Generate()
			tiers[i].CreatedAt = now
			tiers[i].UpdatedAt = now
		}
		return tx.Create(&tiers).Error
	})
}

// EnsureDemoProduct seeds one complete product (variants, device rules,
// bulk tiers) for local development.
func EnsureDemoProduct(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing catalogdomain.Product
		err := tx.Where("slug = ?", demoProductSlug).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		productID := node.Generate()
		product := catalogdomain.Product{
			ID:                         productID,
			Code:                       "IPTV-PREMIUM",
			Slug:                       demoProductSlug,
			Name:                       "IPTV Premium",
			Description:                "Full channel lineup with VOD library.",
			Currency:                   "USD",
			AdultChannelsFeePercentage: 20,
			Active:                     true,
			CreatedAt:                  now,
			UpdatedAt:                  now,
			Variants: []catalogdomain.ProductVariant{
				{ID: node.Generate(), Name: "1 Month", DurationMonths: 1, Price: 10, Currency: "USD", Position: 0},
				{ID: node.Generate(), Name: "6 Months", DurationMonths: 6, Price: 54, Currency: "USD", Position: 1},
				{ID: node.Generate(), Name: "12 Months", DurationMonths: 12, Price: 96, Currency: "USD", Position: 2},
			},
			DeviceRules: []catalogdomain.DevicePricingRule{
				{ID: node.Generate(), DeviceCount: 1, Multiplier: 1},
				{ID: node.Generate(), DeviceCount: 2, Multiplier: 1.5},
				{ID: node.Generate(), DeviceCount: 3, Multiplier: 2},
			},
			BulkTiers: []catalogdomain.BulkDiscountTier{
				{ID: node.Generate(), MinQuantity: 3, DiscountPercentage: 5},
				{ID: node.Generate(), MinQuantity: 5, DiscountPercentage: 10},
			},
		}
		return tx.Create(&product).Error
	})
}
