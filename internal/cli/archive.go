package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todotxt/internal/storage"
	"todotxt/internal/task"
)

func (a *app) archiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move completed tasks out of the todo file into the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.load()
			if err != nil {
				return err
			}
			var done []*task.Task
			for _, t := range list.Tasks() {
				if t.IsCompleted() {
					done = append(done, t)
				}
			}
			if len(done) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to archive")
				return nil
			}

			archive, err := storage.OpenArchive(a.cfg.ArchiveDB)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer archive.Close()
			if err := archive.Add(done...); err != nil {
				return err
			}

			list.Remove(done...)
			if err := a.save(); err != nil {
				return err
			}
			a.logger.Info("archived tasks", "count", len(done), "archive", a.cfg.ArchiveDB)
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d task(s)\n", len(done))
			return nil
		},
	}
}

func (a *app) archivedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archived",
		Short: "List archived tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			archive, err := storage.OpenArchive(a.cfg.ArchiveDB)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer archive.Close()
			archived, err := archive.List()
			if err != nil {
				return err
			}
			for _, at := range archived {
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", at.ID, at.RawText)
			}
			return nil
		},
	}
}
