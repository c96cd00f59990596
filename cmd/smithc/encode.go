package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/johannes-adr/smith"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <schema-file> <type-name>",
	Short: "Transcode a JSON document on stdin into binary wire format on stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaFile, typeName := args[0], args[1]

		src, err := readSchemaFile(schemaFile)
		if err != nil {
			return err
		}
		s, err := smith.Compile(src)
		if err != nil {
			return err
		}
		ref, ok := s.TypeOf(typeName)
		if !ok {
			fatalf("no such type: %s", typeName)
		}

		jsonText, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}

		data, err := s.JSONToBinary(ref, string(jsonText))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
