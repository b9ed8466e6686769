package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/commitgraph/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string
	maxSessions int
	noCache     bool
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve visible graphs over HTTP",
		Long: `Serve visible graphs over HTTP.

Clients upload commit logs to /api/v1/sessions and page through the rows of
the resulting graph. Sorted orders are shared through the configured cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :7700)")
	cmd.Flags().IntVar(&opts.maxSessions, "max-sessions", 0, "maximum live sessions (default: unlimited)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not use the order cache")

	return cmd
}

// serverConfig maps the loaded configuration and flags onto a server config.
func (c *CLI) serverConfig(ctx context.Context, opts *serveOpts) (server.Config, error) {
	cfg := c.config()
	sc := server.Config{
		Addr:             cfg.Server.Addr,
		PageSize:         cfg.Server.PageSize,
		MaxPageSize:      cfg.Server.MaxPageSize,
		DefaultSort:      cfg.Graph.Sort,
		MissingTimestamp: cfg.Graph.MissingTimestamp,
		Palette:          cfg.Render.Palette,
		SessionTTL:       cfg.Server.SessionTTL.Duration,
		MaxSessions:      opts.maxSessions,
		CacheTTL:         cfg.Cache.TTL.Duration,
		Keyer:            keyer(cfg.Cache),
		Logger:           c.Logger,
	}
	if opts.addr != "" {
		sc.Addr = opts.addr
	}
	if !opts.noCache {
		cc, err := newCache(ctx, cfg.Cache)
		if err != nil {
			return server.Config{}, err
		}
		sc.Cache = cc
	}
	return sc, nil
}

func (c *CLI) runServe(ctx context.Context, w io.Writer, opts *serveOpts) error {
	sc, err := c.serverConfig(ctx, opts)
	if err != nil {
		return err
	}
	if sc.Cache != nil {
		defer sc.Cache.Close()
	}

	printInfo(w, "Serving on %s", StyleHighlight.Render(sc.Addr))
	printDetail(w, "sort %s, cache %s", sc.DefaultSort, c.config().Cache.Backend)
	return server.New(sc).Run(ctx)
}
