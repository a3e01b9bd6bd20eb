package main

import (
	"bytes"
	"strings"
	"testing"

	"chessbot/internal/testutil"
)

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"unknown theme", []string{"-theme", "purple"}},
		{"depth too deep", []string{"-depth", "9"}},
		{"pawn on the last rank", []string{"-placement", "P3k3/8/8/8/8/8/8/4K3"}},
		{"unknown mode", []string{"-mode", "watch", "-theme", "off"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			testutil.AssertEqual(t, run(tt.args, &stdout, &stderr), 2)
			testutil.AssertTrue(t, stderr.Len() > 0, "error reported on stderr")
		})
	}
}

func TestRunSimulate(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-depth", "0", "-delay", "0", "-seed", "4", "-max-moves", "2", "-theme", "off"}, &stdout, &stderr)
	testutil.AssertEqual(t, code, 0)

	out := stdout.String()
	testutil.AssertEqual(t, strings.Count(out, "Computer ("), 2)
	testutil.AssertTrue(t, strings.Contains(out, "Move limit of 2 reached"), "output %q", out)
}
