package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active config and manage config profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print()
		fmt.Printf("\nHarvest state: %s\n", harvestState(cfg.DataDir))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config profiles with their data folder and harvest state",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := config.ListProfiles()
		if err != nil {
			return fmt.Errorf("cannot read configs directory: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Println("No configs yet. Run `noveld config init` to create one.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "\tLABEL\tDATA DIR\tWORKERS\tMAX PAGES\tSTATE")

		for _, p := range profiles {
			mark := ""
			if p.Active {
				mark = "*"
			}

			if p.Err != nil {
				_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t-\tbroken: %v\n", mark, p.Label, p.Err)
				continue
			}

			c := p.Config
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				mark, p.Label, c.DataDir, c.Workers, c.MaxPages, harvestState(c.DataDir))
		}

		if err := w.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
		}
		return nil
	},
}

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different configuration profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			var err error
			if label, err = selectProfile("Harvest with"); err != nil {
				return err
			}
		}

		if err := config.SwitchConfig(label); err != nil {
			return err
		}

		cfg, err := config.LoadProfile(label)
		if err != nil {
			return err
		}
		fmt.Printf("Switched to %s (data in %s)\n", label, cfg.DataDir)
		return nil
	},
}

// selectProfile asks for one of the stored profiles, showing where each
// keeps its data.
func selectProfile(prompt string) (string, error) {
	profiles, err := config.ListProfiles()
	if err != nil {
		return "", err
	}
	if len(profiles) == 0 {
		return "", errors.New("no configs available")
	}

	items := make([]string, len(profiles))
	for i, p := range profiles {
		items[i] = p.Label
		if p.Config != nil {
			items[i] += "  " + p.Config.DataDir
		}
		if p.Active {
			items[i] += "  (active)"
		}
	}

	sel := promptui.Select{Label: prompt, Items: items}
	idx, _, err := sel.Run()
	if err != nil {
		return "", errors.New("selection cancelled")
	}

	return profiles[idx].Label, nil
}

func init() {
	configCmd.AddCommand(configListCmd, configSwitchCmd)
	rootCmd.AddCommand(configCmd)
}
