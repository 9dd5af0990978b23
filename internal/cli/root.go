// Package cli implements the todo command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"todotxt/internal/config"
	"todotxt/internal/logging"
	"todotxt/internal/storage"
	"todotxt/internal/tasklist"
)

var ErrUnknownID = errors.New("no task with that id")

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath  string
	todoFile    string
	logLevel    string
	firstLaunch bool

	cfg     config.Config
	logger  *log.Logger
	logFile *os.File
	store   *storage.FileStore
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree, so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "todo",
		Short: "Manage a todo.txt task list",
		Long: `todo reads and edits a todo.txt file.

Without a subcommand it opens the interactive task list.`,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
		RunE:              a.runUI,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $TODOTXT_CONFIG or the user config dir)")
	root.PersistentFlags().StringVarP(&a.todoFile, "file", "f", "", "todo.txt file to use instead of the configured one")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.appendCmd(),
		a.prependCmd(),
		a.replaceCmd(),
		a.doCmd(),
		a.undoCmd(),
		a.priCmd(),
		a.depriCmd(),
		a.dueCmd(),
		a.thresholdCmd(),
		a.rmCmd(),
		a.projectsCmd(),
		a.contextsCmd(),
		a.prioritiesCmd(),
		a.archiveCmd(),
		a.archivedCmd(),
		a.watchCmd(),
		a.uiCmd(),
	)
	return root
}

// Execute runs the command line and reports errors on stderr.
func Execute(version string) error {
	root := NewRootCommand()
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.configPath == "" {
		a.configPath = config.ResolveConfigPath()
	}
	if _, err := os.Stat(a.configPath); err != nil {
		a.firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.todoFile != "" {
		cfg.TodoFile = a.todoFile
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.FromConfig(a.logWriter(cmd), cfg.Log.Level, cfg.Log.Format)
	return nil
}

func (a *app) logWriter(cmd *cobra.Command) io.Writer {
	if a.cfg.Log.File == "" {
		return cmd.ErrOrStderr()
	}
	f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "cannot open log file %s: %v\n", a.cfg.Log.File, err)
		return cmd.ErrOrStderr()
	}
	a.logFile = f
	return f
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// load opens the todo file into a fresh list.
func (a *app) load() (*tasklist.TaskList, error) {
	list := tasklist.New()
	a.store = storage.NewFileStore(a.cfg.TodoFile, list,
		storage.WithLineEnding(a.cfg.FileLineEnding()),
		storage.WithLogger(a.logger),
	)
	if err := a.store.Load(); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *app) save() error {
	if err := a.store.Save(); err != nil {
		return err
	}
	a.logger.Info("saved", "path", a.store.Path(), "tasks", a.store.List().Len())
	return nil
}
