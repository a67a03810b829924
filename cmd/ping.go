package cmd

import (
	"context"
	"fmt"
	"time"

	"ditto/internal/redisclient"

	"github.com/spf13/cobra"
)

// pingCmd checks that Redis and the database are reachable.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		res, err := rdb.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "redis:", res)

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database: OK")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
