package rank

import (
	"github.com/streamvue/streamvue/internal/rank/repository"
	"github.com/streamvue/streamvue/internal/rank/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rank.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
