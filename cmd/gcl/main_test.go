package main

import (
	"testing"

	"github.com/creack/pty"
	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-isatty"
)

// TestPtyReportsAsTerminal exercises the same isatty check runREPL uses to
// decide between an interactive prompt and a piped script, against a real
// pty pair rather than the process's actual stdin.
func TestPtyReportsAsTerminal(t *testing.T) {
	ptyFile, ttyFile, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available in this environment: %v", err)
	}
	defer ptyFile.Close()
	defer ttyFile.Close()

	if !isatty.IsTerminal(ttyFile.Fd()) {
		t.Error("expected the tty side of a pty pair to report as a terminal")
	}
}

func TestFitToWidthTruncatesByDisplayWidth(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "short", 5, "short"},
		{"zero width leaves input alone", "no limit", 0, "no limit"},
		{"cut with ellipsis", "a very long error message that should be cut", 12, "a very lo..."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := fitToWidth(c.in, c.width)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("fitToWidth(%q, %d) mismatch (-want +got):\n%s", c.in, c.width, diff)
			}
		})
	}
}
