package task

import "testing"

func TestAppendText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"(A) this is a test task", "(A) this is a test task [text to append]"},
		{"", "[text to append]"},
	}
	for _, tt := range tests {
		task := New(tt.raw)
		task.AppendText("[text to append]")
		if got := task.RawText(); got != tt.want {
			t.Errorf("AppendText on %q: got %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPrependText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"completed with creation", "x 2015-12-31 2015-12-01 test task", "x 2015-12-31 2015-12-01 [text to prepend] test task"},
		{"completed", "x 2015-12-01 test task", "x 2015-12-01 [text to prepend] test task"},
		{"plain", "test task", "[text to prepend] test task"},
		{"prioritized", "(A) test task", "(A) [text to prepend] test task"},
		{"prioritized with creation", "(A) 2015-12-01 test task", "(A) 2015-12-01 [text to prepend] test task"},
		{"creation only", "2015-12-01 test task", "2015-12-01 [text to prepend] test task"},
		{"blank", "", "[text to prepend]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := New(tt.raw)
			task.PrependText("[text to prepend]")
			if got := task.RawText(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReplaceText(t *testing.T) {
	task := New("(A) call mom call dad")
	task.ReplaceText("call", "phone")
	if got := task.RawText(); got != "(A) phone mom phone dad" {
		t.Errorf("got %q", got)
	}
	task.ReplaceText("", "x")
	if got := task.RawText(); got != "(A) phone mom phone dad" {
		t.Errorf("empty old string changed text to %q", got)
	}
}

func TestCompletionMutations(t *testing.T) {
	today := FormatDate(pinToday(t, "2024-03-10"))
	tests := []struct {
		name string
		raw  string
		op   func(*Task)
		want string
	}{
		{"complete drops priority", "(A) test task", (*Task).MarkComplete, "x " + today + " test task"},
		{"complete plain", "test task", (*Task).MarkComplete, "x " + today + " test task"},
		{"complete already completed", "x 2015-12-31 test task", (*Task).MarkComplete, "x 2015-12-31 test task"},
		{"complete blank", "", (*Task).MarkComplete, ""},
		{"incomplete", "x 2015-12-31 test task", (*Task).MarkIncomplete, "test task"},
		{"incomplete not completed", "(A) test task", (*Task).MarkIncomplete, "(A) test task"},
		{"toggle completed", "x 2015-12-31 test task", (*Task).ToggleCompletion, "test task"},
		{"toggle open", "(A) test task", (*Task).ToggleCompletion, "x " + today + " test task"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := New(tt.raw)
			tt.op(task)
			if got := task.RawText(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToggleCompletionRoundTrip(t *testing.T) {
	for _, raw := range []string{"test task", "2015-12-01 test +P @c due:2016-01-01"} {
		task := New(raw)
		task.ToggleCompletion()
		task.ToggleCompletion()
		if got := task.RawText(); got != raw {
			t.Errorf("round trip of %q gave %q", raw, got)
		}
	}
}

func TestPriorityMutations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		op   func(*Task)
		want string
	}{
		{"set on plain", "test task", func(t *Task) { t.SetPriority('C') }, "(C) test task"},
		{"set replaces", "(A) test task", func(t *Task) { t.SetPriority('C') }, "(C) test task"},
		{"set lowercase", "test task", func(t *Task) { t.SetPriority('a') }, "test task"},
		{"set symbol", "(A) test task", func(t *Task) { t.SetPriority('!') }, "(A) test task"},
		{"remove", "(A) test task", (*Task).RemovePriority, "test task"},
		{"remove none", "test task", (*Task).RemovePriority, "test task"},
		{"increase", "(C) test task", (*Task).IncreasePriority, "(B) test task"},
		{"increase at A", "(A) test task", (*Task).IncreasePriority, "(A) test task"},
		{"increase unprioritized", "test task", (*Task).IncreasePriority, "(A) test task"},
		{"increase completed", "x 2015-12-31 test task", (*Task).IncreasePriority, "x 2015-12-31 test task"},
		{"increase blank", "", (*Task).IncreasePriority, ""},
		{"decrease", "(C) test task", (*Task).DecreasePriority, "(D) test task"},
		{"decrease at Z", "(Z) test task", (*Task).DecreasePriority, "(Z) test task"},
		{"decrease unprioritized", "test task", (*Task).DecreasePriority, "(A) test task"},
		{"decrease completed", "x 2015-12-31 test task", (*Task).DecreasePriority, "x 2015-12-31 test task"},
		{"decrease blank", "", (*Task).DecreasePriority, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := New(tt.raw)
			tt.op(task)
			if got := task.RawText(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvalidMutationDoesNotNotify(t *testing.T) {
	task := New("(A) test task")
	fired := 0
	task.Subscribe(func(Field) { fired++ })
	task.SetPriority('a')
	task.SetDueDate("12/31/2015")
	task.SetThresholdDate("Next Monday")
	task.IncreasePriority()
	if fired != 0 {
		t.Errorf("got %d notifications, want 0", fired)
	}
}

func TestDateTagMutations(t *testing.T) {
	tests := []struct {
		name string
		body string
		op   func(*Task, bool)
		want string
	}{
		{"set appends", "(A) test task", set("2015-12-31"), "(A) test task {k}2015-12-31"},
		{"set replaces", "(A) test task {k}2015-12-01", set("2015-12-31"), "(A) test task {k}2015-12-31"},
		{
			"set replaces every occurrence",
			"(A) {k}2015-12-01 test task {k}2015-12-15 {k}2015-12-31",
			set("2015-12-31"),
			"(A) {k}2015-12-31 test task {k}2015-12-31 {k}2015-12-31",
		},
		{"set wrong format", "(A) test task", set("12/31/2015"), "(A) test task"},
		{"set relative", "(A) test task", set("Next Monday"), "(A) test task"},
		{"remove at end", "(A) test task {k}2015-12-31", remove, "(A) test task"},
		{"remove at start", "{k}2015-12-31 test task", remove, "test task"},
		{"remove in middle", "(A) test task {k}2015-12-31 test task", remove, "(A) test task test task"},
		{"remove only token", "{k}2015-12-31", remove, ""},
		{"remove every occurrence", "{k}2015-12-01 a {k}2015-12-02 b {k}2015-12-03", remove, "a b"},
		{"increment", "(A) test task {k}2015-12-31 test task", shift(1), "(A) test task {k}2016-01-01 test task"},
		{"decrement", "(A) test task {k}2015-12-31 test task", shift(-1), "(A) test task {k}2015-12-30 test task"},
	}

	for _, key := range []string{"due:", "t:"} {
		due := key == "due:"
		for _, tt := range tests {
			t.Run(key+tt.name, func(t *testing.T) {
				task := New(replaceKey(tt.body, key))
				tt.op(task, due)
				if got, want := task.RawText(), replaceKey(tt.want, key); got != want {
					t.Errorf("got %q, want %q", got, want)
				}
			})
		}
	}
}

func set(date string) func(*Task, bool) {
	return func(t *Task, due bool) {
		if due {
			t.SetDueDate(date)
			return
		}
		t.SetThresholdDate(date)
	}
}

func remove(t *Task, due bool) {
	if due {
		t.RemoveDueDate()
		return
	}
	t.RemoveThresholdDate()
}

func shift(days int) func(*Task, bool) {
	return func(t *Task, due bool) {
		switch {
		case due && days >= 0:
			t.IncrementDueDate(days)
		case due:
			t.DecrementDueDate(-days)
		case days >= 0:
			t.IncrementThresholdDate(days)
		default:
			t.DecrementThresholdDate(-days)
		}
	}
}

func TestShiftWithoutDateStartsFromToday(t *testing.T) {
	today := pinToday(t, "2024-03-10")

	task := New("(A) test task")
	task.IncrementDueDate(1)
	if want := "(A) test task due:" + FormatDate(today.AddDate(0, 0, 1)); task.RawText() != want {
		t.Errorf("IncrementDueDate: got %q, want %q", task.RawText(), want)
	}

	task = New("(A) test task")
	task.DecrementThresholdDate(1)
	if want := "(A) test task t:" + FormatDate(today.AddDate(0, 0, -1)); task.RawText() != want {
		t.Errorf("DecrementThresholdDate: got %q, want %q", task.RawText(), want)
	}
}
