package storage

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"todotxt/internal/task"
)

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("file:already.db"); got != "file:already.db" {
		t.Errorf("file URL rewritten: %q", got)
	}
	got := sqliteDSN(filepath.Join(t.TempDir(), "a.db"))
	for _, want := range []string{"file://", "mode=rwc", "_pragma=busy_timeout"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}
}

func TestArchive(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "sub", "archive.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer a.Close()

	err = a.Add(
		task.New("x 2015-12-31 2015-12-01 call mom +Family @Phone"),
		task.New("x 2016-01-02 write +Novel"),
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := a.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List: got %d rows, want 2", len(got))
	}
	first := got[0]
	if first.RawText != "x 2015-12-31 2015-12-01 call mom +Family @Phone" {
		t.Errorf("raw text: %q", first.RawText)
	}
	if !first.CompletedOn.Valid || task.FormatDate(first.CompletedOn.Time) != "2015-12-31" {
		t.Errorf("completed on: %+v", first.CompletedOn)
	}
	if !first.CreatedOn.Valid || task.FormatDate(first.CreatedOn.Time) != "2015-12-01" {
		t.Errorf("created on: %+v", first.CreatedOn)
	}
	if !slices.Equal(first.Projects, []string{"+Family"}) || !slices.Equal(first.Contexts, []string{"@Phone"}) {
		t.Errorf("tags: %v %v", first.Projects, first.Contexts)
	}
	if got[1].CreatedOn.Valid {
		t.Errorf("second task has a creation date: %+v", got[1].CreatedOn)
	}
	if first.ArchivedAt.IsZero() {
		t.Errorf("archived_at not set")
	}

	if err := a.Delete(first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = a.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RawText != "x 2016-01-02 write +Novel" {
		t.Errorf("after delete: %+v", got)
	}
}

func TestArchiveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := OpenArchive(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Add(task.New("x 2015-12-31 done")); err != nil {
		t.Fatal(err)
	}
	a.Close()

	a, err = OpenArchive(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer a.Close()
	got, err := a.List()
	if err != nil || len(got) != 1 {
		t.Errorf("after reopen: %d rows, err %v", len(got), err)
	}
}

func TestOpenArchiveEmptyPath(t *testing.T) {
	if _, err := OpenArchive(""); err == nil {
		t.Error("expected error for empty path")
	}
}
