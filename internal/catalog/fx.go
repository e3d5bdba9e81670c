package catalog

import (
	"github.com/streamvue/streamvue/internal/catalog/repository"
	"github.com/streamvue/streamvue/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
