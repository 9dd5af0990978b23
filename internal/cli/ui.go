package cli

import (
	"github.com/spf13/cobra"

	"todotxt/internal/storage"
	"todotxt/internal/ui"
)

func (a *app) uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive task list",
		Args:  cobra.NoArgs,
		RunE:  a.runUI,
	}
}

func (a *app) runUI(_ *cobra.Command, _ []string) error {
	list, err := a.load()
	if err != nil {
		return err
	}

	var watcher *storage.Watcher
	if a.cfg.WatchFile {
		watcher, err = storage.Watch(a.store.Path(), a.cfg.WatchDebounce(), a.logger)
		if err != nil {
			a.logger.Warn("file watching disabled", "err", err)
		} else {
			defer watcher.Close()
		}
	}

	archive, err := storage.OpenArchive(a.cfg.ArchiveDB)
	if err != nil {
		a.logger.Warn("archive unavailable", "err", err)
	} else {
		defer archive.Close()
	}

	a.logger.Debug("starting ui", "path", a.store.Path(), "tasks", list.Len(), "first_launch", a.firstLaunch)
	return ui.Run(ui.Deps{
		Store:       a.store,
		Archive:     archive,
		Watcher:     watcher,
		Logger:      a.logger,
		Config:      a.cfg,
		ConfigPath:  a.configPath,
		FirstLaunch: a.firstLaunch,
	})
}
