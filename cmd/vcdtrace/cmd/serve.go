package cmd

import (
	"net/http"

	"github.com/readm/vcdtrace/bridge"
	"github.com/readm/vcdtrace/internal/logging"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Index a trace, then serve live queries over a websocket",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8732", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	path := args[0]
	p, _, err := runIndexing(path)
	if err != nil {
		return err
	}

	srv := bridge.New(p, bridge.FileChunkReader{Path: path})

	mux := http.NewServeMux()
	mux.Handle("/query", srv.Handler())

	logging.Default().Infof("serving live queries on %s", serveAddr)
	return http.ListenAndServe(serveAddr, mux)
}
