package main

import (
	"github.com/spf13/cobra"

	"github.com/johannes-adr/smith/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start a Language Server Protocol server over stdio for schema documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := lsp.NewServer()
		// Start blocks on stdio until the connection closes.
		return srv.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(lspCmd)
}
