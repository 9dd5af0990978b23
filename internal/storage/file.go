// Package storage persists task lists: the todo.txt file itself, a sqlite
// archive of completed tasks, and a watcher for outside edits.
package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"todotxt/internal/task"
	"todotxt/internal/tasklist"
)

const (
	CRLF = "\r\n"
	LF   = "\n"

	// sniffLimit bounds how far DetectLineEnding looks for a newline.
	sniffLimit = 5000
)

// DetectLineEnding returns the ending of the first line within the first
// 5000 bytes of r, or the platform default when there is none.
func DetectLineEnding(r io.Reader) (string, error) {
	br := bufio.NewReader(io.LimitReader(r, sniffLimit))
	var prev byte
	for {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return tasklist.DefaultLineEnding, nil
		}
		if err != nil {
			return "", err
		}
		if b == '\n' {
			if prev == '\r' {
				return CRLF, nil
			}
			return LF, nil
		}
		prev = b
	}
}

// FileStore binds a TaskList to a todo.txt file.
type FileStore struct {
	path       string
	list       *tasklist.TaskList
	lineEnding string
	logger     *log.Logger

	// lastContent is what the file held after our last load or save.
	lastContent string
	loading     bool
	autoSave    func()
}

type FileOption func(*FileStore)

// WithLineEnding forces the ending used on save instead of sniffing it from
// the file.
func WithLineEnding(ending string) FileOption {
	return func(s *FileStore) {
		s.lineEnding = ending
	}
}

func WithLogger(logger *log.Logger) FileOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

func NewFileStore(path string, list *tasklist.TaskList, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, list: list}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.lineEnding != "" {
		list.SetPreferredLineEnding(s.lineEnding)
	}
	return s
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) List() *tasklist.TaskList { return s.list }

// Load replaces the list with the file's contents. A missing file loads as
// an empty list.
func (s *FileStore) Load() error {
	content, err := s.read()
	if err != nil {
		return err
	}
	s.apply(content)
	s.logger.Debug("loaded task list", "path", s.path, "tasks", s.list.Len())
	return nil
}

// Reload re-reads the file unless it still holds what this store last read
// or wrote. It reports whether the list was replaced.
func (s *FileStore) Reload() (bool, error) {
	content, err := s.read()
	if err != nil {
		return false, err
	}
	if content == s.lastContent {
		return false, nil
	}
	s.apply(content)
	s.logger.Info("reloaded task list", "path", s.path, "tasks", s.list.Len())
	return true, nil
}

func (s *FileStore) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read task file %s: %w", s.path, err)
	}
	return string(data), nil
}

func (s *FileStore) apply(content string) {
	if s.lineEnding == "" {
		// Reading from a string cannot fail.
		ending, _ := DetectLineEnding(strings.NewReader(content))
		s.list.SetPreferredLineEnding(ending)
	}

	var tasks []*task.Task
	for _, line := range fileLines(content) {
		tasks = append(tasks, task.New(line))
	}

	s.loading = true
	defer func() { s.loading = false }()
	s.list.ReplaceAll(tasks...)
	s.lastContent = content
}

// fileLines splits content into lines. A final line break ends the last
// line rather than starting an empty one.
func fileLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := tasklist.SplitLines(content)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Render returns the file contents for the list: every raw line terminated
// by the preferred line ending.
func Render(list *tasklist.TaskList) string {
	var b strings.Builder
	ending := list.PreferredLineEnding()
	for _, t := range list.Tasks() {
		b.WriteString(t.RawText())
		b.WriteString(ending)
	}
	return b.String()
}

// Save writes the list through a temporary file and a rename, so readers
// never see a half-written file.
func (s *FileStore) Save() error {
	content := Render(s.list)
	if err := writeFileAtomic(s.path, []byte(content)); err != nil {
		return fmt.Errorf("write task file %s: %w", s.path, err)
	}
	s.lastContent = content
	s.logger.Debug("saved task list", "path", s.path, "tasks", s.list.Len())
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpName, 0o644)
	}
	return os.Rename(tmpName, path)
}

// AutoSave turns saving after every list change on or off. Loads and
// reloads never trigger a save.
func (s *FileStore) AutoSave(enabled bool) {
	if !enabled {
		if s.autoSave != nil {
			s.autoSave()
			s.autoSave = nil
		}
		return
	}
	if s.autoSave != nil {
		return
	}
	s.autoSave = s.list.Subscribe(func(tasklist.Change) {
		if s.loading {
			return
		}
		if err := s.Save(); err != nil {
			s.logger.Error("auto-save failed", "path", s.path, "err", err)
		}
	})
}
