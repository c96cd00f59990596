package main

import (
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/johannes-adr/smith"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Recompile a schema document every time it changes, reporting errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer w.Close()
		if err := w.Add(path); err != nil {
			return err
		}

		check := func() {
			src, err := readSchemaFile(path)
			if err != nil {
				log.Error().Err(err).Msg("unable to read schema file")
				return
			}
			if _, err := smith.Compile(src); err != nil {
				log.Error().Err(err).Msg("schema failed to compile")
				return
			}
			log.Info().Str("file", path).Msg("schema compiled cleanly")
		}
		check()

		// Editors often emit several write events per save; debounce so a
		// single edit only triggers one recompile.
		signalChange := debounce.New(time.Duration(cfg.WatchDebounceMS) * time.Millisecond)

		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					signalChange(check)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Error().Err(err).Msg("watcher error")
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
