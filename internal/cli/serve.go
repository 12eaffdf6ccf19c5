package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"essaylens/internal/reportserver"
)

// serveReport is a test seam for running the report server.
var serveReport = reportserver.Serve

func newServeCommand(a *app) *cobra.Command {
	var addr, dir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				return usageErrorf("missing --addr")
			}
			if err := a.load(); err != nil {
				return err
			}
			if err := a.initLogger(false); err != nil {
				return err
			}
			defer a.syncLogger()
			if dir == "" {
				dir = a.cfg.Output.Dir
			}
			cfg := reportserver.Config{
				Addr:       addr,
				ResultsDir: dir,
				Logger:     a.logger,
				Ready: func(bound string) {
					fmt.Fprintf(a.stdout, "Serving reports from %s at http://%s\n", dir, bound)
				},
			}
			if err := serveReport(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "Address to listen on")
	cmd.Flags().StringVar(&dir, "dir", "", "Results directory (default from config)")
	return cmd
}
