// Package cmd assembles the CLI command tree.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shopstack-asia/shopstack-timesheet/cmd/serve"
	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shopstack-timesheet",
		Short: "ShopStack timesheet service",
	}

	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug",
		viper.GetBool("debug"), "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&settings.WebServer.Listen, "listen",
		viper.GetString("webserver.listen"), "HTTP listen address")

	rootCmd.AddCommand(serve.Command(settings))
	return rootCmd
}
