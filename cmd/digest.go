package cmd

import (
	"fmt"

	"ditto/internal/digest"
	"ditto/internal/redisclient"

	"github.com/spf13/cobra"
)

var (
	digestOut   string
	digestForce bool
)

// digestCmd builds the trending digest once.
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Write the trending digest for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if digestOut != "" {
			cfg.Digest.OutputDir = digestOut
		}
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
		b := newDigestBuilder(cfg, listings, rdb, d)
		b.Force = digestForce

		path, err := b.Build(cmd.Context())
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to publish")
			return nil
		}
		doc, err := digest.ParseFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%q)\n", path, doc.Frontmatter.Title)
		return nil
	},
}

func init() {
	digestCmd.Flags().StringVar(&digestOut, "out", "", "output directory (default: digest.output_dir)")
	digestCmd.Flags().BoolVar(&digestForce, "force", false, "publish even if today's digest exists")
	rootCmd.AddCommand(digestCmd)
}
