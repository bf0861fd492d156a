package main

import (
	"fmt"
	"os"

	"hexplorer/internal/browser"
	"hexplorer/internal/config"
	"hexplorer/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the file named by --config, or the default location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func rootCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:     "hexplorer [directory]",
		Short:   "Browse directories and preview files as text or hex",
		Long:    `Hexplorer lists a directory, shows file attributes and previews the selected file as decoded text or as a hex dump.`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := loadConfig(cmd)
			if err := logging.Setup(cfg.Log, logging.Options{}); err != nil {
				return err
			}
			defer logging.Close()
			log := logging.NewLogger("main")
			if cfgErr != nil {
				log.WithError(cfgErr).Warn("using default configuration")
			}

			start := ""
			if len(args) > 0 {
				start = args[0]
			}
			model, err := browser.NewModel(cfg, start, !noWatch)
			if err != nil {
				return err
			}
			defer model.Close()

			p := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default ~/.config/hexplorer/hexplorer.toml)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not refresh the listing when the directory changes")

	cmd.AddCommand(dumpCmd())
	cmd.AddCommand(configCmd())
	return cmd
}
