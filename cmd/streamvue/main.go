package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/streamvue/streamvue/internal/catalog"
	"github.com/streamvue/streamvue/internal/config"
	"github.com/streamvue/streamvue/internal/coupon"
	"github.com/streamvue/streamvue/internal/logger"
	"github.com/streamvue/streamvue/internal/migration"
	"github.com/streamvue/streamvue/internal/observability"
	"github.com/streamvue/streamvue/internal/order"
	"github.com/streamvue/streamvue/internal/pricing"
	"github.com/streamvue/streamvue/internal/provisioning"
	"github.com/streamvue/streamvue/internal/ratelimit"
	"github.com/streamvue/streamvue/internal/rank"
	"github.com/streamvue/streamvue/internal/server"
	"github.com/streamvue/streamvue/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		ratelimit.Module,

		// Functional domains
		catalog.Module,
		rank.Module,
		coupon.Module,
		pricing.Module,
		provisioning.Module,
		order.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
