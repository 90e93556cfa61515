package cmd

import "github.com/spf13/cobra"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          "todo",
		Short:        "A persisted todo list served over HTTP",
		Long:         `Todo serves a server rendered todo list, stores it in a JSON or SQLite file and streams changes to browsers over SSE.`,
		SilenceUsage: true,
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (defaults apply when empty)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(publishCmd)
}
