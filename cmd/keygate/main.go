package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/keygatehq/keygate/internal/clock"
	"github.com/keygatehq/keygate/internal/config"
	"github.com/keygatehq/keygate/internal/migration"
	"github.com/keygatehq/keygate/internal/observability"
	"github.com/keygatehq/keygate/internal/server"
	"github.com/keygatehq/keygate/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
