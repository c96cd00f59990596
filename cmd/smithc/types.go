package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johannes-adr/smith"
)

var typesCmd = &cobra.Command{
	Use:   "types <file>",
	Short: "List the declarations in a compiled schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSchemaFile(args[0])
		if err != nil {
			return err
		}
		s, err := smith.Compile(src)
		if err != nil {
			return err
		}
		for _, d := range s.Types() {
			kind := "struct"
			if d.Kind == smith.KindEnum {
				kind = "enum"
			}
			fmt.Printf("%3d  %-7s %s\n", d.ID, kind, d.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
