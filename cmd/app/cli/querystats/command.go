package querystats

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"gopkg.in/guregu/null.v3"

	cliapp "exusiai.dev/gateway-admin/cmd/app/cli"
	"exusiai.dev/gateway-admin/internal/core/registry"
	"exusiai.dev/gateway-admin/internal/core/stats"
	"exusiai.dev/gateway-admin/internal/pkg/envelope"
)

type CommandDeps struct {
	fx.In

	StatsService    *stats.Service
	RegistryService *registry.Service
}

func optional(c *cli.Context, name string) null.String {
	v := c.String(name)
	return null.NewString(v, v != "")
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "query-stats",
		Usage: "query the merged statistics of one entity and print them as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: "key", Usage: "entity kind: key, keyring or api"},
			&cli.StringFlag{Name: "id", Required: true, Usage: "entity id"},
			&cli.StringFlag{Name: "api", Usage: "api id scoping a key; only valid with --kind key"},
			&cli.StringFlag{Name: "from", Usage: "range start, epoch seconds"},
			&cli.StringFlag{Name: "to", Usage: "range end, epoch seconds"},
			&cli.StringFlag{Name: "granularity", Usage: "one of " + strings.Join(granularityNames(), ", ")},
			&cli.StringSliceFlag{Name: "class", Usage: "response class to query; repeatable"},
		},
		Action: func(c *cli.Context) error {
			var deps CommandDeps
			stop, err := cliapp.Start(c.Context, fx.Populate(&deps))
			if err != nil {
				return err
			}
			defer stop()

			return run(c, deps)
		},
	}
}

func granularityNames() []string {
	gs := stats.ValidGranularities()
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = string(g)
	}
	return names
}

func run(c *cli.Context, deps CommandDeps) error {
	ctx := c.Context

	pathParts, err := entityPath(ctx, deps.RegistryService, c.String("kind"), c.String("id"), c.String("api"))
	if err != nil {
		return err
	}

	granularity, err := stats.ResolveGranularity(optional(c, "granularity"))
	if err != nil {
		return err
	}
	r, err := deps.StatsService.ParseTimeRange(optional(c, "from"), optional(c, "to"))
	if err != nil {
		return err
	}

	result, err := deps.StatsService.Run(ctx, stats.Query{
		PathParts:       pathParts,
		Range:           r,
		Granularity:     granularity,
		ResponseClasses: c.StringSlice("class"),
	})
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(envelope.New(200, result), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(b))
	return err
}

// entityPath checks the entity exists and returns its storage path parts.
func entityPath(ctx context.Context, reg *registry.Service, kind, id, apiID string) ([]string, error) {
	if apiID != "" && kind != "key" {
		return nil, fmt.Errorf("--api only scopes keys, got --kind %s", kind)
	}

	switch kind {
	case "key":
		if _, err := reg.GetKey(ctx, id); err != nil {
			return nil, err
		}
		if apiID != "" {
			return []string{string(registry.KindAPI), apiID, string(registry.KindKey), id}, nil
		}
		return []string{string(registry.KindKey), id}, nil
	case "keyring":
		if _, err := reg.GetKeyring(ctx, id); err != nil {
			return nil, err
		}
		return []string{string(registry.KindKeyring), id}, nil
	case "api":
		if _, err := reg.GetAPI(ctx, id); err != nil {
			return nil, err
		}
		return []string{string(registry.KindAPI), id}, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}
