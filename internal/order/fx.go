package order

import (
	"github.com/streamvue/streamvue/internal/order/repository"
	"github.com/streamvue/streamvue/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
