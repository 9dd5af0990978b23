package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"todotxt/internal/task"
	"todotxt/internal/tasklist"
)

func (a *app) listCmd() *cobra.Command {
	var sortKey string
	var all bool
	cmd := &cobra.Command{
		Use:     "list [terms...]",
		Aliases: []string{"ls"},
		Short:   "List tasks, optionally filtered by terms (prefix a term with - to exclude)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortKey == "" {
				sortKey = a.cfg.DefaultSort
			}
			key, err := tasklist.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			list, err := a.load()
			if err != nil {
				return err
			}
			tasks := tasklist.Filter(list.Tasks(), args...)
			if !all {
				tasks = visible(tasks)
			}
			printTasks(cmd.OutOrStdout(), tasklist.Sorted(tasks, key))
			return nil
		},
	}
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "sort by text, priority, due or created")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include blank lines and tasks whose threshold date is in the future")
	return cmd
}

// visible drops blank lines and tasks hidden until a future threshold date.
func visible(tasks []*task.Task) []*task.Task {
	var out []*task.Task
	for _, t := range tasks {
		if t.IsBlank() || t.ThresholdState() == task.BeforeThresholdDate {
			continue
		}
		out = append(out, t)
	}
	return out
}

func printTasks(w io.Writer, tasks []*task.Task) {
	width := 1
	for _, t := range tasks {
		if id, _ := t.ID(); len(strconv.Itoa(id)) > width {
			width = len(strconv.Itoa(id))
		}
	}
	for _, t := range tasks {
		id, _ := t.ID()
		fmt.Fprintf(w, "%0*d %s\n", width, id, t.RawText())
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.load()
			if err != nil {
				return err
			}
			var opts []task.Option
			if a.cfg.AddCreationDate {
				opts = append(opts, task.WithCreationDate(task.FormatDate(task.Today())))
			}
			t := task.New(strings.Join(args, " "), opts...)
			list.Append(t)
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", t)
			return nil
		},
	}
}

func (a *app) appendCmd() *cobra.Command {
	return a.textCmd("append", "Append text to a task", func(text string) tasklist.Command {
		return tasklist.AppendText{Text: text}
	})
}

func (a *app) prependCmd() *cobra.Command {
	return a.textCmd("prepend", "Prepend text to a task, after its priority and dates", func(text string) tasklist.Command {
		return tasklist.PrependText{Text: text}
	})
}

func (a *app) textCmd(name, short string, build func(string) tasklist.Command) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id> <text>",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd, args[:1], build(strings.Join(args[1:], " ")))
		},
	}
}

func (a *app) replaceCmd() *cobra.Command {
	return a.textCmd("replace", "Replace the whole line of a task", func(text string) tasklist.Command {
		return tasklist.SetText{Text: text}
	})
}

func (a *app) doCmd() *cobra.Command {
	return a.bulkCmd("do <id...>", "Mark tasks complete", tasklist.MarkComplete{})
}

func (a *app) undoCmd() *cobra.Command {
	return a.bulkCmd("undo <id...>", "Mark tasks incomplete", tasklist.MarkIncomplete{})
}

func (a *app) depriCmd() *cobra.Command {
	return a.bulkCmd("depri <id...>", "Remove the priority of tasks", tasklist.RemovePriority{})
}

func (a *app) bulkCmd(use, short string, command tasklist.Command) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd, args, command)
		},
	}
}

func (a *app) priCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pri <id...> <A-Z|up|down>",
		Short: "Set, raise or lower the priority of tasks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := priorityCommand(args[len(args)-1])
			if err != nil {
				return err
			}
			return a.update(cmd, args[:len(args)-1], command)
		},
	}
}

func priorityCommand(arg string) (tasklist.Command, error) {
	switch strings.ToLower(arg) {
	case "up", "+":
		return tasklist.IncreasePriority{}, nil
	case "down", "-":
		return tasklist.DecreasePriority{}, nil
	}
	p, size := utf8.DecodeRuneInString(strings.ToUpper(arg))
	if size != len(arg) || p < 'A' || p > 'Z' {
		return nil, fmt.Errorf("priority must be a letter A-Z, up or down, got %q", arg)
	}
	return tasklist.SetPriority{Priority: p}, nil
}

func (a *app) dueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due <id...> <YYYY-MM-DD|today|+N|-N|rm>",
		Short: "Set, shift or remove the due date of tasks",
		Long:  "Set, shift or remove the due date of tasks. Put -- before a negative offset: todo due 3 -- -2",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := dateCommand(args[len(args)-1], true)
			if err != nil {
				return err
			}
			return a.update(cmd, args[:len(args)-1], command)
		},
	}
}

func (a *app) thresholdCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "threshold <id...> <YYYY-MM-DD|today|+N|-N|rm>",
		Aliases: []string{"t"},
		Short:   "Set, shift or remove the threshold date of tasks",
		Long:    "Set, shift or remove the threshold date of tasks. Put -- before a negative offset: todo t 3 -- -2",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := dateCommand(args[len(args)-1], false)
			if err != nil {
				return err
			}
			return a.update(cmd, args[:len(args)-1], command)
		},
	}
}

// dateCommand turns a date argument into the matching due or threshold
// command.
func dateCommand(arg string, due bool) (tasklist.Command, error) {
	switch {
	case arg == "rm":
		if due {
			return tasklist.RemoveDueDate{}, nil
		}
		return tasklist.RemoveThresholdDate{}, nil
	case strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-"):
		n, err := strconv.Atoi(arg[1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid day offset %q", arg)
		}
		switch {
		case due && arg[0] == '+':
			return tasklist.IncrementDueDate{Days: n}, nil
		case due:
			return tasklist.DecrementDueDate{Days: n}, nil
		case arg[0] == '+':
			return tasklist.IncrementThresholdDate{Days: n}, nil
		default:
			return tasklist.DecrementThresholdDate{Days: n}, nil
		}
	}

	d, ok := task.Today(), arg == "today"
	if !ok {
		d, ok = task.ParseDate(arg)
	}
	if !ok {
		return nil, fmt.Errorf("date must be YYYY-MM-DD, today, +N, -N or rm, got %q", arg)
	}
	if due {
		return tasklist.SetDueDate{Date: d}, nil
	}
	return tasklist.SetThresholdDate{Date: d}, nil
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id...>",
		Aliases: []string{"del"},
		Short:   "Delete tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.load()
			if err != nil {
				return err
			}
			selected, err := resolve(list, args)
			if err != nil {
				return err
			}
			n := list.Remove(selected...)
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s)\n", n)
			return nil
		},
	}
}

// update applies command to the tasks named by ids in one batch, saves, and
// prints the updated tasks.
func (a *app) update(cmd *cobra.Command, ids []string, command tasklist.Command) error {
	list, err := a.load()
	if err != nil {
		return err
	}
	selected, err := resolve(list, ids)
	if err != nil {
		return err
	}
	if err := list.UpdateSelected(selected, command); err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}
	printTasks(cmd.OutOrStdout(), selected)
	return nil
}

func resolve(list *tasklist.TaskList, ids []string) ([]*task.Task, error) {
	selected := make([]*task.Task, 0, len(ids))
	for _, arg := range ids {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid task id %q", arg)
		}
		t, ok := list.Find(id)
		if !ok {
			return nil, fmt.Errorf("task %d: %w", id, ErrUnknownID)
		}
		selected = append(selected, t)
	}
	return selected, nil
}
