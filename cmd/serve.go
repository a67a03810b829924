package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ditto/internal/api"
	"ditto/internal/redisclient"
	"ditto/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the listing API and run the background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		d, err := cfg.ParseDurations()
		if err != nil {
			return err
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		listings, err := newTrendingService(cfg, st, rdb)
		if err != nil {
			return err
		}

		ws := []worker.Worker{
			&api.Server{
				Addr:    cfg.HTTP.Addr,
				Handler: api.NewRouter(listings, st, cfg.HTTP.AllowOrigins),
			},
		}
		if d.WarmInterval > 0 {
			slog.Info("starting cache warmer", "interval", d.WarmInterval)
			ws = append(ws, &worker.CacheWarmer{Listings: listings, Interval: d.WarmInterval})
		}
		if d.DigestInterval > 0 {
			slog.Info("starting digest builder", "digest", cfg.Digest.Name, "interval", d.DigestInterval)
			ws = append(ws, newDigestBuilder(cfg, listings, rdb, d))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("received signal, shutting down", "signal", s.String())
			cancel()
		}()

		return worker.NewManager(ws...).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
