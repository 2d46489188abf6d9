package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: "Serves the catalog, work state, and generation operations as a JSON\n" +
		"API for the web front end. Shuts down cleanly on SIGINT/SIGTERM.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := viperForCmd(cmd).GetString("addr")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.New(addr, st).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address (also ECONCOACH_ADDR)")
}
