package cmd

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-index a trace every time it changes on disk",
	Long:  "Watches a trace file with fsnotify and re-runs index on every write, useful while a simulator is still appending to the trace.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

// watchDebounce collapses the burst of writes a single append can
// generate into one re-index, mirroring the debounce window used by the
// directory watcher this command is grounded on.
const watchDebounce = 200 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(path); err != nil {
		return err
	}

	reindex := func() {
		if err := runIndexCmd(cmd, []string{path}); err != nil {
			fmt.Printf("reindex failed: %v\n", err)
		}
	}
	reindex()

	var timer *time.Timer
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, reindex)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("watch error: %v\n", err)
		}
	}
}
