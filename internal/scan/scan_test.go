package scan

import (
	"strings"
	"testing"
)

func never(string) bool  { return false }
func always(string) bool { return true }

func TestForward(t *testing.T) {
	s := New([]string{"Título:", "Editor:"})
	lines := []string{"ISSN", "", "Título:", "http://example.org", "Revista", "EDITORIAL"}

	tests := []struct {
		name      string
		start     int
		validate  Validator
		lookahead int
		wantIdx   int
		wantOK    bool
	}{
		{"skips blank label and url", 0, always, 5, 4, true},
		{"start of document", -1, always, 5, 0, true},
		{"specific validator", 0, func(s string) bool { return s == "EDITORIAL" }, 5, 5, true},
		{"bound too small", 0, func(s string) bool { return s == "EDITORIAL" }, 1, 0, false},
		{"never matches", -1, never, 10, 0, false},
		{"zero bound", -1, always, 0, 0, false},
		{"negative bound", -1, always, -3, 0, false},
		{"start at end", 5, always, 5, 0, false},
		{"start past end", 50, always, 5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := s.Forward(lines, tt.start, tt.validate, tt.lookahead)
			if ok != tt.wantOK {
				t.Fatalf("Forward() ok = %v, want %v (match %+v)", ok, tt.wantOK, m)
			}
			if ok && m.Index != tt.wantIdx {
				t.Errorf("Forward() index = %d, want %d", m.Index, tt.wantIdx)
			}
			if ok && m.Text != strings.TrimSpace(lines[m.Index]) {
				t.Errorf("Forward() text = %q, want %q", m.Text, lines[m.Index])
			}
		})
	}
}

func TestForward_EmptyInput(t *testing.T) {
	s := New(nil)
	if _, ok := s.Forward(nil, -1, always, 3); ok {
		t.Error("Forward(nil) matched")
	}
	if _, ok := s.Forward([]string{"", "  ", ""}, -1, always, 3); ok {
		t.Error("Forward(blank lines) matched")
	}
}

func TestForward_NeverBackward(t *testing.T) {
	s := New([]string{"label:"})
	lines := []string{"a", "b", "", "label:", "c", "d", "mailto:x@y.org", "e"}
	for start := -1; start < len(lines); start++ {
		m, ok := s.Forward(lines, start, always, len(lines))
		if ok && m.Index <= start {
			t.Errorf("Forward(start=%d) returned index %d", start, m.Index)
		}
	}
}

func TestForwardCount_SkippedLinesDoNotCount(t *testing.T) {
	s := New([]string{"Título:", "Soporte:"})
	// Candidates a..e interleaved with labels, blanks and URLs.
	lines := []string{
		"Título:", "a", "", "http://x", "b", "Soporte:", "c",
		"mailto:someone", "d", "TÍTULO:", "e", "f",
	}

	for _, bound := range []int{1, 3, 5} {
		_, ok, examined := s.ForwardCount(lines, -1, never, bound)
		if ok {
			t.Fatalf("ForwardCount(bound=%d) matched with never validator", bound)
		}
		if examined != bound {
			t.Errorf("ForwardCount(bound=%d) examined %d candidates, want %d", bound, examined, bound)
		}
	}

	// Bound reaches past the skipped lines to the fifth candidate.
	m, ok, examined := s.ForwardCount(lines, -1, func(s string) bool { return s == "e" }, 5)
	if !ok || m.Index != 10 || examined != 5 {
		t.Errorf("ForwardCount() = %+v, %v, %d; want index 10, true, 5", m, ok, examined)
	}

	// Fewer candidates than the bound: examines all of them.
	_, _, examined = s.ForwardCount(lines, -1, never, 100)
	if examined != 6 {
		t.Errorf("ForwardCount(bound=100) examined %d, want 6", examined)
	}
}

func TestIsLabel_CaseFolded(t *testing.T) {
	s := New([]string{"Fecha de asignación:", "  ", "ISSN asignado:"})
	tests := []struct {
		text string
		want bool
	}{
		{"Fecha de asignación:", true},
		{"FECHA DE ASIGNACIÓN:", true},
		{"  issn asignado:  ", true},
		{"Fecha de asignación", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := s.IsLabel(tt.text); got != tt.want {
			t.Errorf("IsLabel(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}

	var zero *Scanner
	if zero.IsLabel("anything") {
		t.Error("nil Scanner reported a label")
	}
}

func TestLast(t *testing.T) {
	lines := []string{"x", "1234-5678", "y", "", "8765-4321", "z"}
	isID := func(s string) bool { return len(s) == 9 && s[4] == '-' }

	m, ok := Last(lines, isID)
	if !ok || m.Index != 4 || m.Text != "8765-4321" {
		t.Errorf("Last() = %+v, %v; want index 4", m, ok)
	}
	if _, ok := Last(lines, never); ok {
		t.Error("Last(never) matched")
	}
	if _, ok := Last(nil, always); ok {
		t.Error("Last(nil) matched")
	}
}

func TestSplit(t *testing.T) {
	got := Split("  uno \r\ndos\r\n\ntres  \rcuatro")
	want := []string{"uno", "dos", "", "tres", "cuatro"}
	if len(got) != len(want) {
		t.Fatalf("Split() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Split()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
