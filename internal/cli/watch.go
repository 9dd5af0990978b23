package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"todotxt/internal/storage"
	"todotxt/internal/tasklist"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the task list again every time the todo file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd)
		},
	}
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command) error {
	list, err := a.load()
	if err != nil {
		return err
	}
	w, err := storage.Watch(a.store.Path(), a.cfg.WatchDebounce(), a.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	key, err := tasklist.ParseSortKey(a.cfg.DefaultSort)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printTasks(out, tasklist.Sorted(visible(list.Tasks()), key))
	return a.follow(ctx, out, list, key, w.Changes())
}

// follow reloads the list and prints it again on every signal from changes.
// It returns when ctx is done or changes is closed.
func (a *app) follow(ctx context.Context, out io.Writer, list *tasklist.TaskList, key tasklist.SortKey, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			changed, err := a.store.Reload()
			if err != nil {
				a.logger.Error("reload failed", "path", a.store.Path(), "err", err)
				continue
			}
			if !changed {
				continue
			}
			fmt.Fprintln(out, "---")
			printTasks(out, tasklist.Sorted(visible(list.Tasks()), key))
		}
	}
}
