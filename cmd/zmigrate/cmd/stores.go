package cmd

import (
	"github.com/spf13/cobra"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the configured destination stores",
	Long: `Prints the destination store hosts from the config file together with
the 1-based index that 'run --store' expects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Stores) == 0 {
			info("no destination stores configured")
			return nil
		}
		for i, host := range cfg.Stores {
			info("%d: %s", i+1, host)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storesCmd)
}
