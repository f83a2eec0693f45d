package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"datadeck/internal/config"
)

func init() {
	rootCmd.AddCommand(initConfigCmd)
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write a starter HCL configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		cfg.Database = &config.Database{Driver: "sqlite", DSN: "datadeck.db"}
		if err := config.Export(args[0], cfg); err != nil {
			return err
		}
		fmt.Println("Wrote", args[0])
		return nil
	},
}
