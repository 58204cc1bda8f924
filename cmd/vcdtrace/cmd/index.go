package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Index a trace and print timing and snapshot statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexCmd,
}

func runIndexCmd(cmd *cobra.Command, args []string) error {
	p, elapsed, err := runIndexing(args[0])
	if err != nil {
		return err
	}
	begin, end := p.TimeRange()
	ts := p.Timescale()
	stats := p.Stats()
	fmt.Printf("signals:    %d\n", p.SignalCount())
	fmt.Printf("snapshots:  %d\n", p.SnapshotCount())
	fmt.Printf("timescale:  %d%s\n", ts.Magnitude, ts.Unit)
	fmt.Printf("time range: [%d, %d]\n", begin, end)
	fmt.Printf("indexed in: %s\n", elapsed)
	fmt.Printf("recoverable errors: unknown-id=%d unknown-vartype=%d truncated=%d invalid-query=%d\n",
		stats.UnknownIDCodeCount, stats.UnknownVarTypeCount, stats.TruncatedFileCount, stats.InvalidQueryCount)
	return nil
}
