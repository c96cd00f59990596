package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/johannes-adr/smith"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <schema-file> <type-name>",
	Short: "Transcode binary wire format on stdin into a JSON document on stdout",
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

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}

		jsonText, err := s.BinaryToJSON(ref, data)
		if err != nil {
			return err
		}
		_, err = os.Stdout.WriteString(jsonText + "\n")
		return err
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
