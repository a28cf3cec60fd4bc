package server

import (
	"go.uber.org/fx"

	"exusiai.dev/gateway-admin/internal/server/httpserver"
	"exusiai.dev/gateway-admin/internal/server/svr"
)

func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(httpserver.Create),
		fx.Provide(svr.CreateEndpointGroups))
}
