package cli

import (
	"context"

	"go.uber.org/fx"

	"exusiai.dev/gateway-admin/internal/app"
	"exusiai.dev/gateway-admin/internal/app/appcontext"
)

// Start boots the dependency graph without the HTTP server, so that module can populate
// what a command needs. The returned stop func tears the graph down.
func Start(ctx context.Context, module fx.Option) (stop func(), err error) {
	a := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	if err := a.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		_ = a.Stop(context.Background())
	}, nil
}
