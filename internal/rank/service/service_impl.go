package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
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
	Repo  rankdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  rankdomain.Repository
}

func New(p Params) rankdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("rank.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) DiscountFor(ctx context.Context, customerRef string) (float64, error) {
	standing, err := s.StandingFor(ctx, customerRef)
	if err != nil {
		return 0, err
	}
	return standing.DiscountPercentage, nil
}

func (s *Service) StandingFor(ctx context.Context, customerRef string) (*rankdomain.Standing, error) {
	customerRef = normalizeRef(customerRef)
	if customerRef == "" {
		return nil, rankdomain.ErrInvalidCustomerRef
	}

	var points int64
	customer, err := s.repo.FindCustomer(ctx, s.db, customerRef)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		points = customer.Points
	}

	tiers, err := s.repo.ListTiers(ctx, s.db)
	if err != nil {
		return nil, err
	}

	standing := &rankdomain.Standing{CustomerRef: customerRef, Points: points}
	// Tiers come back ordered by min_points; the last qualifying one wins.
	for i := range tiers {
		if tiers[i].MinPoints <= points {
			standing.TierCode = tiers[i].Code
			standing.TierName = tiers[i].Name
			standing.DiscountPercentage = tiers[i].DiscountPercentage
		}
	}
	return standing, nil
}

func (s *Service) AddPoints(ctx context.Context, customerRef string, points int64) error {
	customerRef = normalizeRef(customerRef)
	if customerRef == "" {
		return rankdomain.ErrInvalidCustomerRef
	}
	if points <= 0 {
		return nil
	}

	return s.repo.UpsertCustomerPoints(ctx, s.db, &rankdomain.CustomerRank{
		ID:          s.genID.Generate(),
		CustomerRef: customerRef,
		Points:      points,
		UpdatedAt:   time.Now().UTC(),
	})
}

func (s *Service) ListTiers(ctx context.Context) ([]rankdomain.RankTier, error) {
	return s.repo.ListTiers(ctx, s.db)
}

func (s *Service) CreateTier(ctx context.Context, req rankdomain.TierRequest) (*rankdomain.RankTier, error) {
	if err := validateTier(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tier := &rankdomain.RankTier{
		ID:                 s.genID.Generate(),
		Code:               strings.ToLower(strings.TrimSpace(req.Code)),
		Name:               strings.TrimSpace(req.Name),
		MinPoints:          req.MinPoints,
		DiscountPercentage: req.DiscountPercentage,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.InsertTier(ctx, s.db, tier); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, rankdomain.ErrDuplicateCode
		}
		return nil, err
	}
	return tier, nil
}

func (s *Service) UpdateTier(ctx context.Context, id string, req rankdomain.TierRequest) (*rankdomain.RankTier, error) {
	if err := validateTier(req); err != nil {
		return nil, err
	}
	tier, err := s.findTier(ctx, id)
	if err != nil {
		return nil, err
	}

	tier.Code = strings.ToLower(strings.TrimSpace(req.Code))
	tier.Name = strings.TrimSpace(req.Name)
	tier.MinPoints = req.MinPoints
	tier.DiscountPercentage = req.DiscountPercentage
	tier.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateTier(ctx, s.db, tier); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, rankdomain.ErrDuplicateCode
		}
		return nil, err
	}
	return tier, nil
}

func (s *Service) DeleteTier(ctx context.Context, id string) error {
	tier, err := s.findTier(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteTier(ctx, s.db, tier.ID)
}

func (s *Service) findTier(ctx context.Context, id string) (*rankdomain.RankTier, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, rankdomain.ErrInvalidID
	}
	tier, err := s.repo.FindTierByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, rankdomain.ErrNotFound
	}
	return tier, nil
}

func validateTier(req rankdomain.TierRequest) error {
	if strings.TrimSpace(req.Code) == "" {
		return rankdomain.ErrInvalidCode
	}
	if strings.TrimSpace(req.Name) == "" {
		return rankdomain.ErrInvalidName
	}
	if req.MinPoints < 0 {
		return rankdomain.ErrInvalidMinPoints
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return rankdomain.ErrInvalidDiscount
	}
	return nil
}

func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}
