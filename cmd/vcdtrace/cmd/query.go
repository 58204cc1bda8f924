package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/readm/vcdtrace"
	"github.com/readm/vcdtrace/resultbuf"
	"github.com/readm/vcdtrace/symtab"
	"github.com/spf13/cobra"
)

var (
	queryBegin   uint64
	queryEnd     uint64
	querySignals string
	queryPx      float64
)

var queryCmd = &cobra.Command{
	Use:   "query <file>",
	Short: "Index a trace, then run one query over it and print the decoded transitions",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueryCmd,
}

func init() {
	queryCmd.Flags().Uint64Var(&queryBegin, "begin", 0, "query window start time")
	queryCmd.Flags().Uint64Var(&queryEnd, "end", 0, "query window end time")
	queryCmd.Flags().StringVar(&querySignals, "signals", "", "comma-separated signal names or full paths")
	queryCmd.Flags().Float64Var(&queryPx, "px", -1, "pixel_time_step; negative disables sub-pixel glitch collapsing")
}

// resolveSignals maps the --signals flag's comma-separated names to signal
// indices, matching against both bare Name and dotted FullPath.
func resolveSignals(p *vcdtrace.Parser, spec string) ([]int, error) {
	if spec == "" {
		all := make([]int, p.SignalCount())
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	wanted := strings.Split(spec, ",")
	signals := p.Signals()
	var out []int
	for _, w := range wanted {
		w = strings.TrimSpace(w)
		found := false
		for _, sig := range signals {
			if sig.Name == w || sig.FullPath == w {
				out = append(out, sig.Index)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no such signal %q", w)
		}
	}
	return out, nil
}

func runQueryCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	p, _, err := runIndexing(path)
	if err != nil {
		return err
	}

	sigIdx, err := resolveSignals(p, querySignals)
	if err != nil {
		return err
	}

	fileOffset, _, snapIdx, ok := p.GetQueryPlan(queryBegin)
	if !ok {
		return fmt.Errorf("no snapshot available to serve this query")
	}
	if err := p.BeginQuery(queryBegin, queryEnd, sigIdx, snapIdx, queryPx); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Seek(fileOffset, io.SeekStart); err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			more, err := p.PushChunkForQuery(buf[:n])
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	res, err := p.FlushQueryBinary()
	if err != nil {
		return err
	}
	printResult(p, res)
	return nil
}

func printResult(p *vcdtrace.Parser, res resultbuf.Result) {
	signals := p.Signals()
	for _, t := range res.Transitions1Bit {
		fmt.Printf("%d %s = %s\n", t.Timestamp, signalLabel(signals, t.SignalIndex), value1BitString(resultbuf.Value1Bit(t.Value)))
	}
	for _, t := range res.TransitionsMultiBit {
		fmt.Printf("%d %s = %s\n", t.Timestamp, signalLabel(signals, t.SignalIndex), res.String(t))
	}
}

func signalLabel(signals []symtab.Signal, idx uint32) string {
	if int(idx) < len(signals) {
		return signals[idx].FullPath
	}
	return strconv.FormatUint(uint64(idx), 10)
}

func value1BitString(v resultbuf.Value1Bit) string {
	switch v {
	case resultbuf.Value0:
		return "0"
	case resultbuf.Value1:
		return "1"
	case resultbuf.ValueX:
		return "x"
	case resultbuf.ValueZ:
		return "z"
	case resultbuf.ValueGlitch:
		return "GLITCH"
	default:
		return "?"
	}
}
