package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/haccp/internal/clock"
	"github.com/smallbiznis/haccp/internal/config"
	"github.com/smallbiznis/haccp/internal/migration"
	"github.com/smallbiznis/haccp/internal/observability"
	"github.com/smallbiznis/haccp/internal/scheduler"
	"github.com/smallbiznis/haccp/internal/server"
	"github.com/smallbiznis/haccp/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema and seed data must exist before routes serve traffic.
		migration.Module,
		server.Module,

		// Functional Domains
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNodeID)
}
