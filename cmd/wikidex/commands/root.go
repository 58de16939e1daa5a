package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/wikidex/config"
)

var (
	cfg         = config.Load()
	surfaceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "wikidex",
	Short: "wikidex renders Wuthering Waves wiki pages and serves them as structured records.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if surfaceFlag != "" {
			cfg.Surface.Kind = surfaceFlag
		}
		return cfg.Validate()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&surfaceFlag, "surface", "",
		`rendering surface, "browser" or "http" (default from WIKIDEX_SURFACE)`)
}

// ExecuteContext runs the root command and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
