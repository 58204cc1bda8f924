package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "vcdtrace",
	Short: "vcdtrace — VCD waveform indexing and query engine",
	Long:  "Streaming VCD parser with a sparse snapshot index: index once, query any time window cheaply.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
}
