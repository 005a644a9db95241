package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brainzone/internal/models"
	"brainzone/pkg/config"
)

// Exit codes. Setup failures (configuration, unreadable resources) are
// told apart from runs that stopped part way.
const (
	exitOK    = 0
	exitRun   = 1
	exitSetup = 2
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "brainzone",
	Short: "Anatomical zone labelling of electrode contacts",
	Long: "Samples a labelled brain atlas in a spherical neighborhood around each electrode contact\n" +
		"and annotates the contact with the dominant anatomical zones and its gray/white polarity (PTD).",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(configPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "brainzone.yaml", "configuration file (defaults are used when missing)")

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(zonesCmd())
	rootCmd.AddCommand(initConfigCmd())
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case models.IsSetupError(err):
		return exitSetup
	default:
		return exitRun
	}
}

func main() {
	os.Exit(exitCode(rootCmd.Execute()))
}
