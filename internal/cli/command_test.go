package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idelchi/topdirs/internal/dirstat"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := New("v0.0.0-test").Command()

	var stdout, stderr bytes.Buffer

	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func fixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	files := map[string]int{"a/f": 500, "b/f": 2 << 20, "b/deep/f": 10}
	for path, size := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}

		if err := os.WriteFile(full, make([]byte, size), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	if err := os.Mkdir(filepath.Join(root, "c"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	return root
}

func TestCommandReportsLargestDirectories(t *testing.T) {
	root := fixture(t)

	stdout, _, err := execute(t, "-r", "1", root)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), stdout)
	}

	wantPrefixes := []string{
		"1 : " + root + " ",
		"2 : " + filepath.Join(root, "b") + " ",
		"3 : " + filepath.Join(root, "a") + " ",
		"4 : " + filepath.Join(root, "c") + " ",
	}
	wantSuffixes := []string{" - 2.000 MB", " - 2.000 MB", " - 500.000 B", " - 0.000 B"}

	for i, line := range lines {
		if !strings.HasPrefix(line, wantPrefixes[i]) || !strings.HasSuffix(line, wantSuffixes[i]) {
			t.Errorf("line %d = %q", i+1, line)
		}
	}
}

func TestCommandUnboundedByDefault(t *testing.T) {
	root := fixture(t)

	stdout, _, err := execute(t, "--strategy", "aggregate", "--top", "20", root)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if !strings.Contains(stdout, filepath.Join(root, "b", "deep")+" ") {
		t.Errorf("expected nested directory in output:\n%s", stdout)
	}
}

func TestCommandJSON(t *testing.T) {
	root := fixture(t)

	stdout, _, err := execute(t, "-o", "json", "--min-size", "1KiB", root)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if !strings.Contains(stdout, `"size_human": "2.000 MB"`) {
		t.Errorf("unexpected JSON output:\n%s", stdout)
	}

	if strings.Contains(stdout, `"size_human": "500.000 B"`) {
		t.Errorf("directory below --min-size listed:\n%s", stdout)
	}
}

func TestCommandUsageErrors(t *testing.T) {
	root := fixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no directory", nil},
		{"two directories", []string{root, root}},
		{"negative depth", []string{"-r", "-1", root}},
		{"non-integer depth", []string{"-r", "deep", root}},
		{"unknown flag", []string{"--color", root}},
		{"bad output", []string{"-o", "yaml", root}},
		{"bad policy", []string{"--on-error", "retry", root}},
		{"bad strategy", []string{"--strategy", "guess", root}},
		{"bad min-size", []string{"--min-size", "lots", root}},
		{"zero top", []string{"--top", "0", root}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}

			if stdout != "" && !strings.Contains(stdout, "Usage:") {
				t.Errorf("unexpected report on stdout: %q", stdout)
			}

			if !strings.Contains(stdout+stderr, "Usage:") {
				t.Errorf("expected usage message, got stdout=%q stderr=%q", stdout, stderr)
			}
		})
	}
}

func TestCommandNegativeDepthIsInvalidDepth(t *testing.T) {
	_, _, err := execute(t, "--max-recursion", "-3", t.TempDir())
	if !errors.Is(err, dirstat.ErrInvalidDepth) {
		t.Fatalf("err = %v, want %v", err, dirstat.ErrInvalidDepth)
	}
}

func TestCommandMissingDirectory(t *testing.T) {
	stdout, stderr, err := execute(t, filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected an error")
	}

	if stdout != "" {
		t.Errorf("expected no report, got %q", stdout)
	}

	if strings.Contains(stderr, "Usage:") {
		t.Errorf("scan errors should not print usage:\n%s", stderr)
	}
}

func TestCommandInit(t *testing.T) {
	stdout, _, err := execute(t, "--init")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if !strings.Contains(stdout, "fzf") || strings.Contains(stdout, "{{") {
		t.Errorf("unexpected integration script:\n%s", stdout)
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
