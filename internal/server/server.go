package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	catalogdomain "github.com/streamvue/streamvue/internal/catalog/domain"
	"github.com/streamvue/streamvue/internal/config"
	coupondomain "github.com/streamvue/streamvue/internal/coupon/domain"
	"github.com/streamvue/streamvue/internal/observability"
	orderdomain "github.com/streamvue/streamvue/internal/order/domain"
	pricingdomain "github.com/streamvue/streamvue/internal/pricing/domain"
	"github.com/streamvue/streamvue/internal/ratelimit"
	rankdomain "github.com/streamvue/streamvue/internal/rank/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, metrics *observability.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.TracingMiddleware())
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, metrics *observability.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	catalogSvc catalogdomain.Service
	rankSvc    rankdomain.Service
	couponSvc  coupondomain.Service
	pricingSvc pricingdomain.Service
	orderSvc   orderdomain.Service
	limiter    *ratelimit.CheckoutLimiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	CatalogSvc catalogdomain.Service
	RankSvc    rankdomain.Service
	CouponSvc  coupondomain.Service
	PricingSvc pricingdomain.Service
	OrderSvc   orderdomain.Service
	Limiter    *ratelimit.CheckoutLimiter
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http"),
		catalogSvc: p.CatalogSvc,
		rankSvc:    p.RankSvc,
		couponSvc:  p.CouponSvc,
		pricingSvc: p.PricingSvc,
		orderSvc:   p.OrderSvc,
		limiter:    p.Limiter,
	}

	s.registerAPIRoutes()
	s.registerAdminRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Catalog --------
	api.GET("/products", s.ListProducts)
	api.GET("/products/:idOrSlug", s.GetProduct)

	// -------- Pricing --------
	api.POST("/pricing/quote", s.QuoteRateLimit(), s.Quote)

	// -------- Coupons --------
	api.POST("/coupons/validate", s.QuoteRateLimit(), s.ValidateCoupon)

	// -------- Orders --------
	api.POST("/checkout/selection", s.QuoteRateLimit(), s.BuildSelection)
	api.POST("/orders", s.OrderRateLimit(), s.CreateOrder)
	api.GET("/orders/lookup", s.QuoteRateLimit(), s.GuestLookup)

	// -------- Rank --------
	api.GET("/rank/tiers", s.ListRankTiers)
}

func (s *Server) registerAdminRoutes() {
	if s.cfg.AdminToken == "" {
		s.log.Warn("admin token not configured, admin routes disabled")
		return
	}

	admin := s.engine.Group("/admin", s.AdminTokenRequired())

	// -------- Products --------
	admin.GET("/products", s.AdminListProducts)
	admin.POST("/products", s.AdminCreateProduct)
	admin.PATCH("/products/:id", s.AdminUpdateProduct)
	admin.POST("/products/:id/archive", s.AdminArchiveProduct)
	admin.PUT("/products/:id/variants", s.AdminReplaceVariants)
	admin.PUT("/products/:id/device-rules", s.AdminReplaceDeviceRules)
	admin.PUT("/products/:id/bulk-tiers", s.AdminReplaceBulkTiers)

	// -------- Coupons --------
	admin.GET("/coupons", s.AdminListCoupons)
	admin.POST("/coupons", s.AdminCreateCoupon)
	admin.PATCH("/coupons/:id", s.AdminUpdateCoupon)
	admin.POST("/coupons/:id/disable", s.AdminDisableCoupon)

	// -------- Rank tiers --------
	admin.GET("/rank/tiers", s.ListRankTiers)
	admin.POST("/rank/tiers", s.AdminCreateRankTier)
	admin.PATCH("/rank/tiers/:id", s.AdminUpdateRankTier)
	admin.DELETE("/rank/tiers/:id", s.AdminDeleteRankTier)
	admin.GET("/rank/standing", s.AdminRankStanding)

	// -------- Orders --------
	admin.GET("/orders", s.AdminListOrders)
	admin.GET("/orders/:orderNumber", s.AdminGetOrder)
	admin.POST("/orders/:orderNumber/paid", s.AdminMarkOrderPaid)
}
