package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"github.com/streamvue/streamvue/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, req catalogdomain.CreateProductRequest) (*catalogdomain.Product, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, catalogdomain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalogdomain.ErrInvalidName
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return nil, catalogdomain.ErrInvalidCurrency
	}
	if req.AdultChannelsFeePercentage < 0 || req.AdultChannelsFeePercentage > 100 {
		return nil, catalogdomain.ErrInvalidFee
	}

	variants, err := s.buildVariants(req.Variants, currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entity := &catalogdomain.Product{
		ID:                         s.genID.Generate(),
		Code:                       code,
		Slug:                       slug.Make(name),
		Name:                       name,
		Description:                req.Description,
		Currency:                   currency,
		AdultChannelsFeePercentage: req.AdultChannelsFeePercentage,
		Active:                     true,
		CreatedAt:                  now,
		UpdatedAt:                  now,
		Variants:                   variants,
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("product created", zap.String("product_id", entity.ID.String()), zap.String("code", entity.Code))
	return entity, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req catalogdomain.UpdateProductRequest) (*catalogdomain.Product, error) {
	entity, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, catalogdomain.ErrInvalidName
		}
		entity.Name = name
		entity.Slug = slug.Make(name)
	}
	if req.Description != nil {
		entity.Description = *req.Description
	}
	if req.AdultChannelsFeePercentage != nil {
		if *req.AdultChannelsFeePercentage < 0 || *req.AdultChannelsFeePercentage > 100 {
			return nil, catalogdomain.ErrInvalidFee
		}
		entity.AdultChannelsFeePercentage = *req.AdultChannelsFeePercentage
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}
	entity.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) ArchiveProduct(ctx context.Context, id string) error {
	entity, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if !entity.Active {
		return nil
	}
	entity.Active = false
	entity.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, entity)
}

func (s *Service) ListProducts(ctx context.Context, includeArchived bool) ([]catalogdomain.Product, error) {
	return s.repo.List(ctx, s.db, includeArchived)
}

func (s *Service) GetProduct(ctx context.Context, idOrSlug string) (*catalogdomain.Product, error) {
	return s.findByIDOrSlug(ctx, idOrSlug)
}

func (s *Service) ReplaceVariants(ctx context.Context, productID string, inputs []catalogdomain.VariantInput) (*catalogdomain.Product, error) {
	entity, err := s.findByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	variants, err := s.buildVariants(inputs, entity.Currency)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		variants[i].ProductID = entity.ID
	}

	if err := s.repo.ReplaceVariants(ctx, s.db, entity.ID, variants); err != nil {
		return nil, err
	}
	return s.findByID(ctx, productID)
}

func (s *Service) ReplaceDeviceRules(ctx context.Context, productID string, inputs []catalogdomain.DeviceRuleInput) (*catalogdomain.Product, error) {
	entity, err := s.findByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(inputs))
	rules := make([]catalogdomain.DevicePricingRule, 0, len(inputs))
	for _, in := range inputs {
		if in.DeviceCount < 1 || in.Multiplier < 0 {
			return nil, catalogdomain.ErrInvalidDeviceRule
		}
		if _, dup := seen[in.DeviceCount]; dup {
			return nil, catalogdomain.ErrInvalidDeviceRule
		}
		seen[in.DeviceCount] = struct{}{}
		rules = append(rules, catalogdomain.DevicePricingRule{
			ID:          s.genID.Generate(),
			ProductID:   entity.ID,
			DeviceCount: in.DeviceCount,
			Multiplier:  in.Multiplier,
		})
	}

	if err := s.repo.ReplaceDeviceRules(ctx, s.db, entity.ID, rules); err != nil {
		return nil, err
	}
	return s.findByID(ctx, productID)
}

func (s *Service) ReplaceBulkTiers(ctx context.Context, productID string, inputs []catalogdomain.BulkTierInput) (*catalogdomain.Product, error) {
	entity, err := s.findByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	tiers := make([]catalogdomain.BulkDiscountTier, 0, len(inputs))
	for _, in := range inputs {
		if in.MinQuantity < 1 || in.DiscountPercentage < 0 || in.DiscountPercentage > 100 {
			return nil, catalogdomain.ErrInvalidBulkTier
		}
		tiers = append(tiers, catalogdomain.BulkDiscountTier{
			ID:                 s.genID.Generate(),
			ProductID:          entity.ID,
			MinQuantity:        in.MinQuantity,
			DiscountPercentage: in.DiscountPercentage,
		})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinQuantity < tiers[j].MinQuantity })

	if err := s.repo.ReplaceBulkTiers(ctx, s.db, entity.ID, tiers); err != nil {
		return nil, err
	}
	return s.findByID(ctx, productID)
}

func (s *Service) Snapshot(ctx context.Context, idOrSlug string) (*catalogdomain.Snapshot, error) {
	entity, err := s.findByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if !entity.Active {
		return nil, catalogdomain.ErrProductArchived
	}

	return &catalogdomain.Snapshot{
		ProductID:                  entity.ID,
		Code:                       entity.Code,
		Currency:                   entity.Currency,
		AdultChannelsFeePercentage: entity.AdultChannelsFeePercentage,
		Variants:                   entity.Variants,
		DeviceRules:                entity.DeviceRules,
		BulkTiers:                  entity.BulkTiers,
	}, nil
}

func (s *Service) buildVariants(inputs []catalogdomain.VariantInput, fallbackCurrency string) ([]catalogdomain.ProductVariant, error) {
	variants := make([]catalogdomain.ProductVariant, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" || in.DurationMonths < 1 || in.Price < 0 {
			return nil, catalogdomain.ErrInvalidVariant
		}
		currency := strings.ToUpper(strings.TrimSpace(in.Currency))
		if currency == "" {
			currency = fallbackCurrency
		}
		variants = append(variants, catalogdomain.ProductVariant{
			ID:             s.genID.Generate(),
			Name:           name,
			DurationMonths: in.DurationMonths,
			Price:          in.Price,
			Currency:       currency,
			Position:       int32(i),
		})
	}
	return variants, nil
}

func (s *Service) findByID(ctx context.Context, id string) (*catalogdomain.Product, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) findByIDOrSlug(ctx context.Context, idOrSlug string) (*catalogdomain.Product, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if parsed, err := snowflake.ParseString(idOrSlug); err == nil {
		entity, err := s.repo.FindByID(ctx, s.db, parsed)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			return entity, nil
		}
	}

	entity, err := s.repo.FindBySlug(ctx, s.db, idOrSlug)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return entity, nil
}
