package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todotxt/internal/tasklist"
)

func (a *app) projectsCmd() *cobra.Command {
	return a.metaCmd("projects", "List every project in the task list", (*tasklist.Metadata).Projects)
}

func (a *app) contextsCmd() *cobra.Command {
	return a.metaCmd("contexts", "List every context in the task list", (*tasklist.Metadata).Contexts)
}

func (a *app) metaCmd(use, short string, values func(*tasklist.Metadata) []string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.load()
			if err != nil {
				return err
			}
			for _, v := range values(list.Metadata()) {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func (a *app) prioritiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priorities",
		Short: "List every priority in the task list; ~ stands for no priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.load()
			if err != nil {
				return err
			}
			for _, p := range list.Metadata().Priorities() {
				fmt.Fprintln(cmd.OutOrStdout(), string(p))
			}
			return nil
		},
	}
}
