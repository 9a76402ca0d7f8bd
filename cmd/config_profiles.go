package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/providers"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var flagForceRemove bool

// seriesDefaults seeds new profiles with folders for the harvested series.
func seriesDefaults() *config.Config {
	return config.ForSeries(providers.WeTriedTLS().SeriesSlug)
}

func confirm(label string) bool {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config for the series",
	RunE: func(cmd *cobra.Command, args []string) error {
		def := seriesDefaults()

		fmt.Println("Default configuration:")
		def.Print()
		fmt.Println()

		if !confirm("Create the Default config") {
			fmt.Println("Aborted.")
			return nil
		}

		path, err := config.InitDefaultConfig(def)
		if errors.Is(err, os.ErrExist) {
			fmt.Printf("Configuration already exists at:\n  %s\n", path)
			fmt.Println("Use `noveld config reset` to recreate it.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Println("Config created at:", path)
		fmt.Printf("This config is now active (label: %s). Chapters will be kept in %s.\n", config.DefaultLabel, def.DataDir)
		return nil
	},
}

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config with its own data folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			p := promptui.Prompt{Label: "Label for new config"}
			var err error
			if label, err = p.Run(); err != nil {
				return errors.New("cancelled")
			}
		}

		cfg := seriesDefaults()
		// a second profile must not share the Default data folder
		cfg.DataDir += "-" + label

		path, err := config.CreateConfig(label, cfg)
		if err != nil {
			return err
		}

		fmt.Printf("Created config %s at %s\n", label, path)
		fmt.Printf("Data folder: %s\n", cfg.DataDir)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit [label]",
	Short: "Edit the active or the given config",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, err := labelOrActive(args)
		if err != nil {
			return err
		}

		path, err := config.ConfigPathByLabel(label)
		if err != nil {
			return err
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "nvim"
		}

		ed := exec.Command(editor, path)
		ed.Stdin, ed.Stdout, ed.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := ed.Run(); err != nil {
			return fmt.Errorf("failed to open editor: %w", err)
		}

		// catch typos before the next harvest does
		if _, err := config.LoadProfile(label); err != nil {
			return fmt.Errorf("config %s no longer loads: %w", label, err)
		}
		return nil
	},
}

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a config",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.RenameConfig(args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("Renamed config %q → %q\n", args[0], args[1])
		return nil
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a config. Its data folder is left in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]

		active, _ := config.CurrentLabel()
		if label == active && !flagForceRemove && !confirm(fmt.Sprintf("Config %q is active. Remove it anyway", label)) {
			fmt.Println("Aborted.")
			return nil
		}

		switched, err := config.RemoveConfig(label)
		if err != nil {
			return err
		}

		fmt.Printf("Removed configuration %q\n", label)
		if switched != "" {
			fmt.Println("Switched to:", switched)
		}
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset [label]",
	Short: "Reset the active or the given config to the series defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, err := labelOrActive(args)
		if err != nil {
			return err
		}

		old, err := config.LoadProfile(label)
		if err != nil {
			return err
		}

		def := seriesDefaults()
		// keep pointing at the chapters already harvested
		def.DataDir = old.DataDir

		path, err := config.ResetConfig(label, def)
		if err != nil {
			return err
		}

		fmt.Printf("Reset config %s: %s\n", label, path)
		return nil
	},
}

func labelOrActive(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	label, err := config.CurrentLabel()
	if err != nil {
		return "", fmt.Errorf("no active config: %w", err)
	}
	return label, nil
}

func init() {
	configRemoveCmd.Flags().BoolVarP(&flagForceRemove, "force", "f", false, "remove the active config without asking")

	configCmd.AddCommand(
		configInitCmd,
		configAddCmd,
		configEditCmd,
		configRenameCmd,
		configRemoveCmd,
		configResetCmd,
	)
}
