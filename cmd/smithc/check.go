package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/johannes-adr/smith"
	"github.com/johannes-adr/smith/pkg/errs"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Compile a schema document and report any errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSchemaFile(args[0])
		if err != nil {
			return err
		}

		_, err = smith.Compile(src)
		if err == nil {
			log.Info().Str("file", args[0]).Msg("schema compiled cleanly")
			return nil
		}

		// Send structured error data if available, so each diagnostic is
		// reported with its own position instead of one opaque message.
		if list, ok := err.(interface{ Errs() []*errs.Error }); ok {
			for _, e := range list.Errs() {
				log.Error().
					Str("pos", e.Pos.String()).
					Str("title", e.Title).
					Msg(e.Summary)
			}
		} else {
			log.Error().Msg(err.Error())
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
