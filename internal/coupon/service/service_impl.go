package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	"github.com/streamvue/streamvue/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  coupondomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  coupondomain.Repository
}

func New(p Params) coupondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("coupon.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Validate(ctx context.Context, code string, eligibleAmount float64) (*coupondomain.ValidationResult, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, coupondomain.ErrInvalidCode
	}
	if eligibleAmount < 0 || math.IsNaN(eligibleAmount) || math.IsInf(eligibleAmount, 0) {
		return nil, coupondomain.ErrInvalidAmount
	}

	c, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, coupondomain.ErrNotFound
	}

	now := time.Now().UTC()
	switch {
	case !c.Active:
		return nil, coupondomain.ErrInactive
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return nil, coupondomain.ErrNotYetValid
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return nil, coupondomain.ErrExpired
	case c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit:
		return nil, coupondomain.ErrExhausted
	case eligibleAmount < c.MinOrderAmount:
		return nil, coupondomain.ErrBelowMinimum
	}

	discount := discountAmount(c, eligibleAmount)
	return &coupondomain.ValidationResult{
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		DiscountAmount: discount,
		FinalTotal:     round2(eligibleAmount - discount),
	}, nil
}

func (s *Service) Redeem(ctx context.Context, code string) error {
	code = normalizeCode(code)
	if code == "" {
		return coupondomain.ErrInvalidCode
	}

	ok, err := s.repo.IncrementUsage(ctx, s.db, code)
	if err != nil {
		return err
	}
	if !ok {
		return coupondomain.ErrExhausted
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]coupondomain.Coupon, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Create(ctx context.Context, req coupondomain.UpsertRequest) (*coupondomain.Coupon, error) {
	discountType, err := validateUpsert(req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entity := &coupondomain.Coupon{
		ID:                s.genID.Generate(),
		Code:              normalizeCode(req.Code),
		DiscountType:      discountType,
		DiscountValue:     req.DiscountValue,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		UsageLimit:        req.UsageLimit,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, coupondomain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("coupon created", zap.String("code", entity.Code), zap.String("type", string(entity.DiscountType)))
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req coupondomain.UpsertRequest) (*coupondomain.Coupon, error) {
	discountType, err := validateUpsert(req)
	if err != nil {
		return nil, err
	}
	entity, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entity.Code = normalizeCode(req.Code)
	entity.DiscountType = discountType
	entity.DiscountValue = req.DiscountValue
	entity.MinOrderAmount = req.MinOrderAmount
	entity.MaxDiscountAmount = req.MaxDiscountAmount
	entity.UsageLimit = req.UsageLimit
	entity.ValidFrom = req.ValidFrom
	entity.ValidUntil = req.ValidUntil
	if req.Active != nil {
		entity.Active = *req.Active
	}
	entity.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, coupondomain.ErrDuplicateCode
		}
		return nil, err
	}
	return entity, nil
}

func (s *Service) Disable(ctx context.Context, id string) error {
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

func (s *Service) findByID(ctx context.Context, id string) (*coupondomain.Coupon, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, coupondomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, coupondomain.ErrNotFound
	}
	return entity, nil
}

// discountAmount computes the raw discount, capped at the per-coupon maximum
// and never exceeding the eligible amount itself.
func discountAmount(c *coupondomain.Coupon, eligibleAmount float64) float64 {
	var discount float64
	switch c.DiscountType {
	case coupondomain.Percentage:
		discount = eligibleAmount * c.DiscountValue / 100
	case coupondomain.Fixed:
		discount = c.DiscountValue
	}

	if c.MaxDiscountAmount > 0 && discount > c.MaxDiscountAmount {
		discount = c.MaxDiscountAmount
	}
	if discount > eligibleAmount {
		discount = eligibleAmount
	}
	return round2(discount)
}

func validateUpsert(req coupondomain.UpsertRequest) (coupondomain.DiscountType, error) {
	if normalizeCode(req.Code) == "" {
		return "", coupondomain.ErrInvalidCode
	}

	var discountType coupondomain.DiscountType
	switch strings.ToUpper(strings.TrimSpace(string(req.DiscountType))) {
	case string(coupondomain.Percentage):
		discountType = coupondomain.Percentage
		if req.DiscountValue <= 0 || req.DiscountValue > 100 {
			return "", coupondomain.ErrInvalidDiscountValue
		}
	case string(coupondomain.Fixed):
		discountType = coupondomain.Fixed
		if req.DiscountValue <= 0 {
			return "", coupondomain.ErrInvalidDiscountValue
		}
	default:
		return "", coupondomain.ErrInvalidDiscountType
	}

	if req.MinOrderAmount < 0 || req.MaxDiscountAmount < 0 || req.UsageLimit < 0 {
		return "", coupondomain.ErrInvalidDiscountValue
	}
	return discountType, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
