package controller

import (
	"go.uber.org/fx"

	controlleradmin "exusiai.dev/gateway-admin/internal/controller/admin"
	controllermeta "exusiai.dev/gateway-admin/internal/controller/meta"
)

func Module() fx.Option {
	return fx.Module("controller",
		controlleradmin.Module(),
		controllermeta.Module(),
	)
}
