package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"todotxt/internal/task"
)

// ArchivedTask is a completed task moved out of the todo.txt file.
type ArchivedTask struct {
	ID          int
	RawText     string
	CompletedOn sql.NullTime
	CreatedOn   sql.NullTime
	Projects    []string
	Contexts    []string
	ArchivedAt  time.Time
}

// Archive keeps completed tasks in a sqlite database.
type Archive struct {
	db *sql.DB
}

func OpenArchive(dbPath string) (*Archive, error) {
	if dbPath == "" {
		return nil, errors.New("archive path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	a := &Archive{db: db}
	if err := a.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare archive schema: %w", err)
	}
	return a, nil
}

func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Archive) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS archived_tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_text TEXT NOT NULL,
	completed_on TEXT DEFAULT NULL,
	archived_at TEXT NOT NULL
);`
	if _, err := a.db.Exec(ddl); err != nil {
		return err
	}
	return a.ensureColumns()
}

// ensureColumns adds columns introduced after the first schema so older
// archives keep opening.
func (a *Archive) ensureColumns() error {
	required := map[string]string{
		"created_on": "ALTER TABLE archived_tasks ADD COLUMN created_on TEXT DEFAULT NULL;",
		"projects":   "ALTER TABLE archived_tasks ADD COLUMN projects TEXT NOT NULL DEFAULT '';",
		"contexts":   "ALTER TABLE archived_tasks ADD COLUMN contexts TEXT NOT NULL DEFAULT '';",
	}
	existing := map[string]struct{}{}
	rows, err := a.db.Query(`PRAGMA table_info(archived_tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := a.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// Add stores tasks in one transaction. Either all of them are archived or
// none is.
func (a *Archive) Add(tasks ...*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO archived_tasks (raw_text, completed_on, created_on, projects, contexts, archived_at) VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, t := range tasks {
		if _, err := stmt.Exec(
			t.RawText(),
			nullDate(t.CompletionDateText()),
			nullDate(t.CreationDateText()),
			strings.Join(t.Projects(), " "),
			strings.Join(t.Contexts(), " "),
			now,
		); err != nil {
			return fmt.Errorf("archive %q: %w", t.RawText(), err)
		}
	}
	return tx.Commit()
}

func (a *Archive) List() ([]ArchivedTask, error) {
	rows, err := a.db.Query(`SELECT id, raw_text, completed_on, created_on, projects, contexts, archived_at FROM archived_tasks ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchivedTask
	for rows.Next() {
		var at ArchivedTask
		var completedStr, createdStr sql.NullString
		var projects, contexts, archivedStr string

		if err := rows.Scan(&at.ID, &at.RawText, &completedStr, &createdStr, &projects, &contexts, &archivedStr); err != nil {
			return nil, err
		}
		at.CompletedOn = parseNullDate(completedStr)
		at.CreatedOn = parseNullDate(createdStr)
		at.Projects = strings.Fields(projects)
		at.Contexts = strings.Fields(contexts)
		if archived, err := time.Parse(time.RFC3339, archivedStr); err == nil {
			at.ArchivedAt = archived
		}
		out = append(out, at)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one archived task. Deleting a missing id is not an error.
func (a *Archive) Delete(id int) error {
	_, err := a.db.Exec(`DELETE FROM archived_tasks WHERE id = ?;`, id)
	return err
}

func nullDate(text string) sql.NullString {
	if text == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: text, Valid: true}
}

func parseNullDate(s sql.NullString) sql.NullTime {
	if !s.Valid {
		return sql.NullTime{}
	}
	d, ok := task.ParseDate(s.String)
	if !ok {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d, Valid: true}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
