package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Flyrell/shopweek/internal/api"
	"github.com/Flyrell/shopweek/internal/metrics"
)

var serveCmd = LeafCommand{
	Use:   "serve",
	Short: "Serve the board over a JSON HTTP API",
	StrFlags: []StringFlag{
		{Name: "addr", Short: "a", Usage: "listen address (default: server.addr from the config)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, configPath, err := getContextPaths(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd, homeDir, configPath, addr)
	},
}.Build()

func runServe(ctx context.Context, cmd *cobra.Command, homeDir, configPath, addr string) error {
	prom := metrics.NewProm()
	a, err := openApp(homeDir, configPath, appOptions{metrics: prom})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv := api.NewServer(a.svc,
		api.WithLogger(a.log.With("api")),
		api.WithMetrics(prom.Handler()),
	)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("serving %s on %s", a.cfg.Board.Name, Primary("http://"+addr))))
	a.log.Infof("listening on %s", addr)
	return srv.ListenAndServe(ctx, addr)
}
