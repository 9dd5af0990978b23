package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"todotxt/internal/config"
	"todotxt/internal/logging"
	"todotxt/internal/storage"
	"todotxt/internal/task"
	"todotxt/internal/tasklist"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeRename
	modeMetadata
)

// Deps is everything the interactive list runs against. Archive and Watcher
// are optional.
type Deps struct {
	Store       *storage.FileStore
	Archive     *storage.Archive
	Watcher     *storage.Watcher
	Logger      *log.Logger
	Config      config.Config
	ConfigPath  string
	FirstLaunch bool
}

type Model struct {
	store   *storage.FileStore
	list    *tasklist.TaskList
	archive *storage.Archive
	watcher *storage.Watcher
	logger  *log.Logger
	cfg     config.Config

	tasks      []*task.Task
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	sortKey    tasklist.SortKey
	pendingKey string
	confirmDel bool
	pendingDel *task.Task
	renaming   *task.Task
	meta       *metaState
	listMeta   bool
	dirty      bool
	// reloadPending records a file change seen while a prompt was open.
	reloadPending bool
}

type fileChangedMsg struct{}

func Run(deps Deps) error {
	m := newModel(deps)
	if deps.FirstLaunch {
		m.status = fmt.Sprintf("Created config at %s. Press '%s' to add a task.", deps.ConfigPath, deps.Config.Keys.Add)
	}
	m.store.AutoSave(m.cfg.AutoSave)

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.dirty && !fm.cfg.AutoSave {
		return fm.store.Save()
	}
	return nil
}

func newModel(deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "Task"
	ti.CharLimit = 512
	ti.Width = 60

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	sortKey, err := tasklist.ParseSortKey(deps.Config.DefaultSort)
	if err != nil {
		logger.Warn("ignoring default sort", "err", err)
		sortKey = tasklist.SortNone
	}

	m := Model{
		store:   deps.Store,
		list:    deps.Store.List(),
		archive: deps.Archive,
		watcher: deps.Watcher,
		logger:  logger,
		cfg:     deps.Config,
		input:   ti,
		mode:    modeList,
		sortKey: sortKey,
		status:  fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", deps.Config.Keys.Add, deps.Config.Keys.Delete),
	}
	m.refresh(nil)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitForFileChange(m.watcher)
}

func waitForFileChange(w *storage.Watcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.meta != nil {
			return m.updateMetadataMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case fileChangedMsg:
		return m.reloadFromDisk()
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) reloadFromDisk() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.watcher != nil {
		cmd = waitForFileChange(m.watcher)
	}
	if m.mode != modeList || m.confirmDel {
		m.reloadPending = true
		m.logger.Debug("deferred reload while editing")
		return m, cmd
	}
	m.reload()
	return m, cmd
}

// reload re-reads the task file. Tasks are matched by id and text, so a
// task that is unchanged on disk stays selected.
func (m *Model) reload() {
	m.reloadPending = false
	selected := m.selected()
	changed, err := m.store.Reload()
	if err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		m.logger.Error("reload failed", "path", m.store.Path(), "err", err)
		return
	}
	if !changed {
		return
	}
	var keep *task.Task
	if selected != nil {
		if i := m.list.IndexOf(selected); i >= 0 {
			keep = m.list.At(i)
		}
	}
	m.refresh(keep)
	m.status = "Task file changed on disk, reloaded"
}

// catchUp applies a reload deferred while a prompt was open. It runs before
// the prompt's result touches the list, so the next save cannot overwrite
// the outside change.
func (m *Model) catchUp() {
	if m.reloadPending {
		m.reload()
	}
}

// stillListed reports whether t survived a reload.
func (m *Model) stillListed(t *task.Task) bool {
	if t != nil && m.list.IndexOf(t) >= 0 {
		return true
	}
	m.status = "Task changed on disk, edit discarded"
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeRename:
		return m.updateRenameMode(key, msg)
	}
	return m.updateListMode(key)
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		m.catchUp()
		return m, nil
	case m.cfg.Keys.Confirm:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.status = "Task cannot be empty"
			return m, nil
		}
		m.catchUp()
		var opts []task.Option
		if m.cfg.AddCreationDate {
			opts = append(opts, task.WithCreationDate(task.FormatDate(task.Today())))
		}
		t := task.New(text, opts...)
		m.list.Append(t)
		m.changed("Added task")
		m.refresh(t)
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateRenameMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel:
		m.mode = modeList
		m.renaming = nil
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		m.catchUp()
		return m, nil
	case m.cfg.Keys.Confirm:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.status = "Task cannot be empty"
			return m, nil
		}
		m.catchUp()
		if m.stillListed(m.renaming) {
			selected := []*task.Task{m.renaming}
			m.apply(selected, tasklist.SetText{Text: text}, "Task updated")
			m.refresh(selected[0])
		}
		m.renaming = nil
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	if m.pendingKey != "" {
		seq := m.pendingKey + key
		m.pendingKey = ""
		return m.updateSequence(seq)
	}
	if m.startsSequence(key) {
		m.pendingKey = key
		return m, nil
	}

	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.input.Placeholder = "Task"
		m.input.SetValue("")
		m.input.Focus()
		m.status = "Add mode: type a task and press Enter"
	case m.cfg.Keys.ToggleMetadata:
		m.listMeta = !m.listMeta
	case m.cfg.Keys.Archive:
		return m.archiveCompleted()
	default:
		return m.updateTaskKey(key)
	}
	return m, nil
}

// updateTaskKey handles the bindings that act on the task under the cursor.
func (m Model) updateTaskKey(key string) (tea.Model, tea.Cmd) {
	if len(m.tasks) == 0 {
		return m, nil
	}
	t := m.tasks[m.cursor]
	step := m.cfg.DueStepDays
	switch key {
	case m.cfg.Keys.Toggle:
		m.update(t, tasklist.ToggleCompletion{}, "Toggled task")
	case m.cfg.Keys.PriorityUp:
		m.update(t, tasklist.IncreasePriority{}, "Priority raised")
	case m.cfg.Keys.PriorityDown:
		m.update(t, tasklist.DecreasePriority{}, "Priority lowered")
	case m.cfg.Keys.DueForward:
		m.update(t, tasklist.IncrementDueDate{Days: step}, "Due date moved forward")
	case m.cfg.Keys.DueBack:
		m.update(t, tasklist.DecrementDueDate{Days: step}, "Due date moved back")
	case m.cfg.Keys.ThresholdFwd:
		m.update(t, tasklist.IncrementThresholdDate{Days: step}, "Threshold moved forward")
	case m.cfg.Keys.ThresholdBack:
		m.update(t, tasklist.DecrementThresholdDate{Days: step}, "Threshold moved back")
	case m.cfg.Keys.Delete:
		m.confirmDel = true
		m.pendingDel = t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.RawText())
	case m.cfg.Keys.Detail:
		m.status = describe(t)
	case m.cfg.Keys.Rename:
		m.mode = modeRename
		m.renaming = t
		m.input.Placeholder = "Task"
		m.input.SetValue(t.RawText())
		m.input.CursorEnd()
		m.input.Focus()
		m.status = "Edit the line and press Enter"
	case m.cfg.Keys.Edit:
		return m.startMetadataEdit(t)
	}
	return m, nil
}

// startsSequence reports whether key begins one of the multi-key bindings.
func (m Model) startsSequence(key string) bool {
	for _, seq := range m.sequences() {
		if len(seq) > len(key) && strings.HasPrefix(seq, key) {
			return true
		}
	}
	return false
}

func (m Model) sequences() []string {
	k := m.cfg.Keys
	return []string{k.SortDue, k.SortPriority, k.SortCreated, k.SortText}
}

func (m Model) updateSequence(seq string) (tea.Model, tea.Cmd) {
	key := tasklist.SortNone
	switch seq {
	case m.cfg.Keys.SortDue:
		key = tasklist.SortDue
	case m.cfg.Keys.SortPriority:
		key = tasklist.SortPriority
	case m.cfg.Keys.SortCreated:
		key = tasklist.SortCreated
	case m.cfg.Keys.SortText:
		key = tasklist.SortText
	default:
		m.status = fmt.Sprintf("Unknown key sequence %q", seq)
		return m, nil
	}
	if m.sortKey == key {
		key = tasklist.SortNone
	}
	m.sortKey = key
	m.refresh(m.selected())
	m.status = fmt.Sprintf("Sorted by %s", key)
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		m.catchUp()
		return m, nil
	case "y", "Y":
		m.confirmDel = false
		m.catchUp()
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			return m, nil
		}
		if m.list.Remove(m.pendingDel) == 0 {
			m.status = "Task changed on disk, delete skipped"
		} else {
			m.changed("Deleted task")
		}
		m.refresh(nil)
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) archiveCompleted() (tea.Model, tea.Cmd) {
	if m.archive == nil {
		m.status = "Archive is not available"
		return m, nil
	}
	var done []*task.Task
	for _, t := range m.list.Tasks() {
		if t.IsCompleted() {
			done = append(done, t)
		}
	}
	if len(done) == 0 {
		m.status = "Nothing to archive"
		return m, nil
	}
	if err := m.archive.Add(done...); err != nil {
		m.status = fmt.Sprintf("archive failed: %v", err)
		return m, nil
	}
	m.list.Remove(done...)
	m.changed(fmt.Sprintf("Archived %d task(s)", len(done)))
	m.refresh(nil)
	return m, nil
}

// update applies cmd to t and keeps the cursor on the updated task.
func (m *Model) update(t *task.Task, cmd tasklist.Command, status string) {
	selected := []*task.Task{t}
	m.apply(selected, cmd, status)
	m.refresh(selected[0])
}

func (m *Model) apply(selected []*task.Task, cmd tasklist.Command, status string) {
	if err := m.list.UpdateSelected(selected, cmd); err != nil {
		m.status = fmt.Sprintf("update failed: %v", err)
		return
	}
	m.changed(status)
}

// changed records a list mutation. With auto-save on the store has already
// written the file.
func (m *Model) changed(status string) {
	m.dirty = true
	m.status = status
	m.logger.Debug("task list changed", "status", status)
}

// refresh rebuilds the visible rows and moves the cursor to keep, when it is
// still shown.
func (m *Model) refresh(keep *task.Task) {
	var rows []*task.Task
	for _, t := range m.list.Tasks() {
		if !t.IsBlank() {
			rows = append(rows, t)
		}
	}
	m.tasks = tasklist.Sorted(rows, m.sortKey)
	if keep != nil {
		for i, t := range m.tasks {
			if t == keep {
				m.cursor = i
				return
			}
		}
	}
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m Model) selected() *task.Task {
	if len(m.tasks) == 0 {
		return nil
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))]
}

func describe(t *task.Task) string {
	id, _ := t.ID()
	info := fmt.Sprintf("Task #%d • %s", id, humanDone(t.IsCompleted()))
	if t.IsPrioritized() {
		info += " • priority:" + string(t.Priority())
	}
	if t.HasProjects() {
		info += " • projects:" + strings.Join(t.Projects(), ",")
	}
	if t.HasContexts() {
		info += " • contexts:" + strings.Join(t.Contexts(), ",")
	}
	if d := t.DueDateText(); d != "" {
		info += " • due:" + d + " (" + t.DueState().String() + ")"
	}
	if d := t.ThresholdDateText(); d != "" {
		info += " • t:" + d
	}
	return info
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
