package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/fetcher"
	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the data folder holds without touching the network",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			DataDir:      flagDataDir,
		})
		if err != nil {
			return err
		}

		site := providers.WeTriedTLS()
		store := index.NewStore(cfg.DataDir)

		ix, err := store.LoadIndex()
		if err != nil {
			return err
		}
		contents, err := store.LoadContents()
		if err != nil {
			return err
		}

		pending := fetcher.BuildQueue(ix, contents, site, chapters.Selection{}, false)

		cover := util.FindCover(cfg.DataDir)
		if cover == "" {
			cover = "(none)"
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "Data folder:\t%s\n", store.Dir())
		_, _ = fmt.Fprintf(w, "Indexed chapters:\t%d\n", len(ix.Order))
		_, _ = fmt.Fprintf(w, "Stored chapters:\t%d\n", len(contents))
		_, _ = fmt.Fprintf(w, "Pending:\t%d\n", len(pending))
		_, _ = fmt.Fprintf(w, "Cover:\t%s\n", cover)
		_, _ = fmt.Fprintf(w, "State:\t%s\n", harvestState(cfg.DataDir))
		if n := len(ix.Order); n > 0 {
			latest := ix.Metadata[ix.Order[n-1]]
			_, _ = fmt.Fprintf(w, "Latest:\t%s (%s)\n", latest.Title, latest.ReleaseDate)
		}
		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}

		for i, j := range pending {
			if i == 10 {
				fmt.Printf("  ... and %d more\n", len(pending)-i)
				break
			}
			fmt.Printf("  %s  [%s]\n", j.TitleHint, j.Slug)
		}

		return nil
	},
}

// harvestState is a one-line summary of a data folder for tables.
func harvestState(dataDir string) string {
	st, err := index.NewStore(dataDir).State()
	if err != nil {
		return "unreadable: " + err.Error()
	}
	if st.Synced.IsZero() {
		return "never harvested"
	}
	return fmt.Sprintf("%d/%d stored, synced %s", st.Stored, st.Indexed, st.Synced.Format("2006-01-02 15:04"))
}

func init() {
	statusCmd.Flags().StringVar(&flagDataDir, "data-dir", "", "folder holding metadata.json and chapters.json")
	rootCmd.AddCommand(statusCmd)
}
