package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/relview/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize relview configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure relview for your project and writes the config file (.relview.yml unless --config is given).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
