package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todotxt/internal/task"
	"todotxt/internal/tasklist"
)

type env struct {
	dir  string
	todo string
}

func newEnv(t *testing.T, content string) env {
	t.Helper()
	dir := t.TempDir()
	e := env{dir: dir, todo: filepath.Join(dir, "todo.txt")}
	if content != "" {
		if err := os.WriteFile(e.todo, []byte(content), 0o644); err != nil {
			t.Fatalf("write todo file: %v", err)
		}
	}
	return e
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "config.toml"),
		"--file", e.todo,
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("todo %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func (e env) file(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.todo)
	if err != nil {
		t.Fatalf("read todo file: %v", err)
	}
	return string(data)
}

func TestAddAndList(t *testing.T) {
	e := newEnv(t, "")
	today := task.FormatDate(task.Today())

	out := e.mustRun(t, "add", "(A)", "Call", "Mom", "@Phone")
	if !strings.Contains(out, "[1] (A) "+today+" Call Mom @Phone") {
		t.Errorf("add output = %q", out)
	}
	if got, want := e.file(t), "(A) "+today+" Call Mom @Phone\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}

	e.mustRun(t, "add", "Buy milk")
	out = e.mustRun(t, "list", "@phone")
	if strings.TrimSpace(out) != "1 (A) "+today+" Call Mom @Phone" {
		t.Errorf("filtered list = %q", out)
	}
}

func TestListSortAndVisibility(t *testing.T) {
	e := newEnv(t, "(C) c\n\n(A) a\nlater t:9999-01-01\nx 2024-01-01 done\n")

	out := e.mustRun(t, "list", "--sort", "priority")
	want := "3 (A) a\n1 (C) c\n5 x 2024-01-01 done\n"
	if out != want {
		t.Errorf("list = %q, want %q", out, want)
	}

	out = e.mustRun(t, "list", "--all")
	if !strings.Contains(out, "later t:9999-01-01") {
		t.Errorf("--all output missing hidden task: %q", out)
	}

	if _, err := e.run(t, "list", "--sort", "bogus"); err == nil {
		t.Error("unknown sort key accepted")
	}
}

func TestBulkCommands(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
		want    string
	}{
		{"append", "call mom\n", []string{"append", "1", "+Family"}, "call mom +Family\n"},
		{"prepend", "(A) 2024-01-01 call\n", []string{"prepend", "1", "please"}, "(A) 2024-01-01 please call\n"},
		{"replace", "call mom\n", []string{"replace", "1", "call", "dad"}, "call dad\n"},
		{"replace blank line", "a\n\nc\n", []string{"replace", "2", "b"}, "a\nb\nc\n"},
		{"undo", "x 2024-03-10 call\n", []string{"undo", "1"}, "call\n"},
		{"pri several", "a\nb\nc\n", []string{"pri", "1", "3", "b"}, "(B) a\nb\n(B) c\n"},
		{"pri up", "(C) a\n", []string{"pri", "1", "up"}, "(B) a\n"},
		{"pri down", "(C) a\n", []string{"pri", "1", "down"}, "(D) a\n"},
		{"depri", "(C) a\n", []string{"depri", "1"}, "a\n"},
		{"due set", "a\n", []string{"due", "1", "2024-03-10"}, "a due:2024-03-10\n"},
		{"due forward", "a due:2024-03-10\n", []string{"due", "1", "+2"}, "a due:2024-03-12\n"},
		{"due back", "a due:2024-03-10\n", []string{"due", "1", "--", "-3"}, "a due:2024-03-07\n"},
		{"due rm", "a due:2024-03-10 b\n", []string{"due", "1", "rm"}, "a b\n"},
		{"threshold set", "a t:2024-03-10\n", []string{"threshold", "1", "2024-05-01"}, "a t:2024-05-01\n"},
		{"threshold alias", "a t:2024-03-10\n", []string{"t", "1", "+1"}, "a t:2024-03-11\n"},
		{"threshold rm", "a t:2024-03-10\n", []string{"threshold", "1", "rm"}, "a\n"},
		{"rm", "a\nb\nc\n", []string{"rm", "2"}, "a\nc\n"},
		{"repeated id", "(C) a\n", []string{"pri", "1", "1", "up"}, "(B) a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.content)
			e.mustRun(t, tt.args...)
			if got := e.file(t); got != tt.want {
				t.Errorf("file = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDoMarksComplete(t *testing.T) {
	e := newEnv(t, "(A) call\nwrite\n")
	e.mustRun(t, "do", "1", "2")
	today := task.FormatDate(task.Today())
	want := "x " + today + " call\nx " + today + " write\n"
	if got := e.file(t); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"unknown id", []string{"do", "7"}, ErrUnknownID},
		{"bad id", []string{"do", "one"}, nil},
		{"bad priority", []string{"pri", "1", "AB"}, nil},
		{"bad date", []string{"due", "1", "tomorrow"}, nil},
		{"bad offset", []string{"due", "1", "+x"}, nil},
		{"missing args", []string{"append", "1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, "a\n")
			_, err := e.run(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
			if got := e.file(t); got != "a\n" {
				t.Errorf("file changed to %q", got)
			}
		})
	}
}

func TestMetadataCommands(t *testing.T) {
	e := newEnv(t, "(A) Call Mom @Phone +Family\n(B) Outline chapter 5 +Novel @Computer\nPlan backyard herb garden @Home\n")

	if got := e.mustRun(t, "projects"); got != "+Family\n+Novel\n" {
		t.Errorf("projects = %q", got)
	}
	if got := e.mustRun(t, "contexts"); got != "@Computer\n@Home\n@Phone\n" {
		t.Errorf("contexts = %q", got)
	}
	if got := e.mustRun(t, "priorities"); got != "A\nB\n~\n" {
		t.Errorf("priorities = %q", got)
	}
}

func TestArchive(t *testing.T) {
	e := newEnv(t, "x 2024-03-10 2024-03-01 done +Home\nopen\n")

	out := e.mustRun(t, "archive")
	if !strings.Contains(out, "Archived 1 task(s)") {
		t.Errorf("archive output = %q", out)
	}
	if got := e.file(t); got != "open\n" {
		t.Errorf("file = %q", got)
	}
	if _, err := os.Stat(filepath.Join(e.dir, "archive.db")); err != nil {
		t.Errorf("archive database: %v", err)
	}

	out = e.mustRun(t, "archived")
	if out != "1 x 2024-03-10 2024-03-01 done +Home\n" {
		t.Errorf("archived = %q", out)
	}

	out = e.mustRun(t, "archive")
	if !strings.Contains(out, "Nothing to archive") {
		t.Errorf("second archive output = %q", out)
	}
}

func TestKeepsCRLF(t *testing.T) {
	e := newEnv(t, "a\r\nb\r\n")
	e.mustRun(t, "append", "2", "more")
	if got := e.file(t); got != "a\r\nb more\r\n" {
		t.Errorf("file = %q", got)
	}
}

func TestDateCommand(t *testing.T) {
	d, _ := task.ParseDate("2024-03-10")
	tests := []struct {
		arg  string
		due  bool
		want tasklist.Command
	}{
		{"rm", true, tasklist.RemoveDueDate{}},
		{"rm", false, tasklist.RemoveThresholdDate{}},
		{"+3", true, tasklist.IncrementDueDate{Days: 3}},
		{"-3", true, tasklist.DecrementDueDate{Days: 3}},
		{"+3", false, tasklist.IncrementThresholdDate{Days: 3}},
		{"-3", false, tasklist.DecrementThresholdDate{Days: 3}},
		{"2024-03-10", true, tasklist.SetDueDate{Date: d}},
		{"2024-03-10", false, tasklist.SetThresholdDate{Date: d}},
		{"today", true, tasklist.SetDueDate{Date: task.Today()}},
	}
	for _, tt := range tests {
		got, err := dateCommand(tt.arg, tt.due)
		if err != nil {
			t.Errorf("dateCommand(%q): %v", tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("dateCommand(%q, %v) = %#v, want %#v", tt.arg, tt.due, got, tt.want)
		}
	}

	for _, bad := range []string{"", "+", "-x", "2024-13-01", "soon"} {
		if _, err := dateCommand(bad, true); err == nil {
			t.Errorf("dateCommand(%q) accepted", bad)
		}
	}
}
