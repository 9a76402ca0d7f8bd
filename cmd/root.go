package cmd

import (
	"fmt"
	"os"

	"github.com/brogergvhs/noveld/internal/providers"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/brogergvhs/noveld/cmd.Version=...".
var Version = "dev"

var (
	flagIgnoreConfig bool
	flagDebug        bool
)

var rootCmd = &cobra.Command{
	Use:     "noveld",
	Short:   "Incremental web novel harvester with EPUB output",
	Version: Version,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the noveld version and the series it harvests",
	Run: func(cmd *cobra.Command, args []string) {
		site := providers.WeTriedTLS()
		fmt.Printf("noveld %s\n", Version)
		fmt.Printf("series: %s (%s)\n", site.Book.Title, site.SeriesURL())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.AddCommand(versionCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
