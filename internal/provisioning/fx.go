package provisioning

import (
	"github.com/streamvue/streamvue/internal/provisioning/panelclient"
	"github.com/streamvue/streamvue/internal/provisioning/service"
	"go.uber.org/fx"
)

var Module = fx.Module("provisioning.service",
	fx.Provide(panelclient.New),
	fx.Provide(service.New),
)
