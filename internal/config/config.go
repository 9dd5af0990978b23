package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultTodoFile       = "todo.txt"
	DefaultArchiveName    = "archive.db"
	// EnvConfigPath overrides where the config file lives.
	EnvConfigPath = "TODOTXT_CONFIG"
	appDirName    = "todotxt"
)

// Line ending settings.
const (
	LineEndingAuto = "auto"
	LineEndingLF   = "lf"
	LineEndingCRLF = "crlf"
)

type Keymap struct {
	Quit           string `toml:"quit"`
	Add            string `toml:"add"`
	Up             string `toml:"up"`
	Down           string `toml:"down"`
	Toggle         string `toml:"toggle"`
	Delete         string `toml:"delete"`
	Detail         string `toml:"detail"`
	Confirm        string `toml:"confirm"`
	Cancel         string `toml:"cancel"`
	Edit           string `toml:"edit"`
	Rename         string `toml:"rename"`
	PriorityUp     string `toml:"priority_up"`
	PriorityDown   string `toml:"priority_down"`
	DueForward     string `toml:"due_forward"`
	DueBack        string `toml:"due_back"`
	ThresholdFwd   string `toml:"threshold_forward"`
	ThresholdBack  string `toml:"threshold_back"`
	Archive        string `toml:"archive"`
	SortDue        string `toml:"sort_due"`
	SortPriority   string `toml:"sort_priority"`
	SortCreated    string `toml:"sort_created"`
	SortText       string `toml:"sort_text"`
	ToggleMetadata string `toml:"toggle_metadata"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type Config struct {
	TodoFile        string `toml:"todo_file"`
	ArchiveDB       string `toml:"archive_db"`
	LineEnding      string `toml:"line_ending"`
	AddCreationDate bool   `toml:"add_creation_date"`
	AutoSave        bool   `toml:"auto_save"`
	WatchFile       bool   `toml:"watch_file"`
	WatchDebounceMS int    `toml:"watch_debounce_ms"`
	DueStepDays     int    `toml:"due_step_days"`
	DefaultSort     string `toml:"default_sort"`
	Log             Log    `toml:"log"`
	Keys            Keymap `toml:"keys"`
}

// ResolveConfigPath picks the config file: $TODOTXT_CONFIG, then the user
// config directory, then config.toml in the working directory.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, appDirName, DefaultConfigFileName)
	}
	return DefaultConfigFileName
}

// LoadOrCreate reads the config at path, writing the defaults there first
// when the file does not exist. Keys missing from the file keep their
// defaults. Relative file paths are resolved against the config directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		return cfg.resolved(path), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg.resolved(path), nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.LineEnding) {
	case "", LineEndingAuto, LineEndingLF, LineEndingCRLF:
	default:
		return fmt.Errorf("line_ending must be auto, lf or crlf, got %q", c.LineEnding)
	}
	if c.WatchDebounceMS < 0 {
		return fmt.Errorf("watch_debounce_ms must not be negative, got %d", c.WatchDebounceMS)
	}
	return nil
}

func (c Config) resolved(configPath string) Config {
	if c.TodoFile == "" {
		c.TodoFile = DefaultTodoFile
	}
	if c.ArchiveDB == "" {
		c.ArchiveDB = DefaultArchiveName
	}
	if c.DueStepDays <= 0 {
		c.DueStepDays = 1
	}
	dir := filepath.Dir(configPath)
	c.TodoFile = resolvePath(dir, c.TodoFile)
	c.ArchiveDB = resolvePath(dir, c.ArchiveDB)
	if c.Log.File != "" {
		c.Log.File = resolvePath(dir, c.Log.File)
	}
	return c
}

func resolvePath(dir, p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
		return p
	}
	return filepath.Join(dir, p)
}

// FileLineEnding maps the line_ending setting to the ending to force on
// save. Empty means detect it from the file.
func (c Config) FileLineEnding() string {
	switch strings.ToLower(c.LineEnding) {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	default:
		return ""
	}
}

func (c Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		TodoFile:        DefaultTodoFile,
		ArchiveDB:       DefaultArchiveName,
		LineEnding:      LineEndingAuto,
		AddCreationDate: true,
		AutoSave:        true,
		WatchFile:       true,
		WatchDebounceMS: 1000,
		DueStepDays:     1,
		DefaultSort:     "none",
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
		Keys: Keymap{
			Quit:           "q",
			Add:            "a",
			Up:             "k",
			Down:           "j",
			Toggle:         " ",
			Delete:         "d",
			Detail:         "enter",
			Confirm:        "enter",
			Cancel:         "esc",
			Edit:           "e",
			Rename:         "r",
			PriorityUp:     "+",
			PriorityDown:   "-",
			DueForward:     "]",
			DueBack:        "[",
			ThresholdFwd:   "}",
			ThresholdBack:  "{",
			Archive:        "A",
			SortDue:        "sd",
			SortPriority:   "sp",
			SortCreated:    "sc",
			SortText:       "st",
			ToggleMetadata: "m",
		},
	}
}
