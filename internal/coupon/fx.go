package coupon

import (
	"github.com/streamvue/streamvue/internal/coupon/repository"
	"github.com/streamvue/streamvue/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
