package main

import (
	"github.com/spf13/cobra"

	serverhttp "facility-recon/server/http"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, closeDeps, err := serverhttp.BuildDeps(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeDeps()
			return serverhttp.Serve(cmd.Context(), deps)
		},
	}
	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	_ = v.BindPFlag("host", cmd.Flags().Lookup("host"))
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
