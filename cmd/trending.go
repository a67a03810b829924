package cmd

import (
	"fmt"
	"text/tabwriter"

	"ditto/internal/redisclient"

	"github.com/spf13/cobra"
)

var (
	trendingLimit   int
	trendingRefresh bool
)

// trendingCmd prints the current trending listing.
var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Print the trending subjects",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		svc, err := newTrendingService(cfg, st, rdb)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		listing := svc.Trending
		if trendingRefresh {
			listing = svc.Refresh
		}
		subjects, err := listing(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tID\tSTARS\tSCORE\tTITLE")
		for i, s := range subjects {
			if trendingLimit > 0 && i >= trendingLimit {
				break
			}
			fmt.Fprintf(tw, "%d\t%d\t%d\t%.6f\t%s\n", i+1, s.ID, s.Points, s.RankScore, s.Title)
		}
		return tw.Flush()
	},
}

func init() {
	trendingCmd.Flags().IntVar(&trendingLimit, "limit", 15, "number of subjects to print (0 for all)")
	trendingCmd.Flags().BoolVar(&trendingRefresh, "refresh", false, "discard the cached listing and recompute")
	rootCmd.AddCommand(trendingCmd)
}
