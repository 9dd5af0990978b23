package tasklist

import (
	"slices"
	"testing"
)

func TestSorted(t *testing.T) {
	l := FromString(
		"(B) 2015-01-03 bravo due:2015-02-01\n" +
			"x 2015-01-05 (A) done due:2014-01-01\n" +
			"alpha\n" +
			"(A) 2015-01-01 charlie due:2015-03-01",
	)

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortNone, []string{"(B) 2015-01-03 bravo due:2015-02-01", "x 2015-01-05 (A) done due:2014-01-01", "alpha", "(A) 2015-01-01 charlie due:2015-03-01"}},
		{SortText, []string{"(A) 2015-01-01 charlie due:2015-03-01", "(B) 2015-01-03 bravo due:2015-02-01", "alpha", "x 2015-01-05 (A) done due:2014-01-01"}},
		{SortPriority, []string{"(A) 2015-01-01 charlie due:2015-03-01", "(B) 2015-01-03 bravo due:2015-02-01", "alpha", "x 2015-01-05 (A) done due:2014-01-01"}},
		{SortDue, []string{"(B) 2015-01-03 bravo due:2015-02-01", "(A) 2015-01-01 charlie due:2015-03-01", "alpha", "x 2015-01-05 (A) done due:2014-01-01"}},
		{SortCreated, []string{"(A) 2015-01-01 charlie due:2015-03-01", "(B) 2015-01-03 bravo due:2015-02-01", "alpha", "x 2015-01-05 (A) done due:2014-01-01"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := raws(Sorted(l.Tasks(), tt.key)); !slices.Equal(got, tt.want) {
				t.Errorf("got %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortNone, false},
		{"Due", SortDue, false},
		{" priority ", SortPriority, false},
		{"size", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSortKey(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSortKey(%q): got (%q, %v)", tt.in, got, err)
		}
	}
}

func TestFilter(t *testing.T) {
	l := FromString("(A) Call Mom @Phone +Family\n(B) Outline chapter +Novel @Computer\nbuy milk @store")

	tests := []struct {
		terms []string
		want  []string
	}{
		{nil, raws(l.Tasks())},
		{[]string{"@phone"}, []string{"(A) Call Mom @Phone +Family"}},
		{[]string{"-@phone", "(b)"}, []string{"(B) Outline chapter +Novel @Computer"}},
		{[]string{"call", "+novel"}, nil},
	}
	for _, tt := range tests {
		if got := raws(Filter(l.Tasks(), tt.terms...)); !slices.Equal(got, tt.want) {
			t.Errorf("Filter(%q): got %q, want %q", tt.terms, got, tt.want)
		}
	}
}
