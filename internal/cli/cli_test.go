package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"essaylens/internal/config"
)

var commandNames = []string{"init", "validate", "rubric", "structure", "analyze", "batch", "watch", "report", "serve", "history"}

// runCLI executes the CLI and returns exit code, stdout and stderr.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// writeTestConfig scaffolds a config pointing at serviceURL inside a temp dir.
func writeTestConfig(t *testing.T, serviceURL string) string {
	t.Helper()
	path := config.ConfigPath(t.TempDir())
	if err := config.Scaffold(path, config.ScaffoldOptions{ServiceURL: serviceURL, OutputDir: "results"}); err != nil {
		t.Fatalf("scaffold config: %v", err)
	}
	return path
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestRootHelp verifies help lists every command.
func TestRootHelp(t *testing.T) {
	code, out, errOut := runCLI(t, "--help")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d", ExitOK, code)
	}
	if errOut != "" {
		t.Fatalf("expected no stderr output, got %q", errOut)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("expected usage header, got %q", out)
	}
	for _, name := range commandNames {
		if !strings.Contains(out, name) {
			t.Fatalf("expected command %q in output", name)
		}
	}
}

// TestNoArgsShowsUsage verifies a bare invocation prints usage.
func TestNoArgsShowsUsage(t *testing.T) {
	code, out, errOut := runCLI(t)
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if errOut != "" {
		t.Fatalf("expected no stderr output, got %q", errOut)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("expected usage output, got %q", out)
	}
}

// TestUnknownCommand verifies unknown commands exit with usage.
func TestUnknownCommand(t *testing.T) {
	code, out, errOut := runCLI(t, "nope")
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if out != "" {
		t.Fatalf("expected no stdout output, got %q", out)
	}
	if !strings.Contains(errOut, "Unknown command") {
		t.Fatalf("expected unknown command error, got %q", errOut)
	}
	if !strings.Contains(errOut, "Usage:") {
		t.Fatalf("expected usage in stderr, got %q", errOut)
	}
}

// TestCommandHelp verifies each command answers --help.
func TestCommandHelp(t *testing.T) {
	for _, name := range commandNames {
		t.Run(name, func(t *testing.T) {
			code, out, _ := runCLI(t, name, "--help")
			if code != ExitOK {
				t.Fatalf("expected exit %d, got %d", ExitOK, code)
			}
			if !strings.Contains(out, "Usage:") {
				t.Fatalf("expected usage for %s, got %q", name, out)
			}
		})
	}
}

// TestUnknownFlagIsUsageError verifies flag errors map to ExitUsage.
func TestUnknownFlagIsUsageError(t *testing.T) {
	code, _, errOut := runCLI(t, "rubric", "--bogus")
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(errOut, "unknown flag") {
		t.Fatalf("expected unknown flag error, got %q", errOut)
	}
}

// TestValidateCommand verifies a scaffolded config validates and a broken one fails.
func TestValidateCommand(t *testing.T) {
	path := writeTestConfig(t, "http://127.0.0.1:9")
	code, out, errOut := runCLI(t, "validate", "--config", path)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, errOut)
	}
	if !strings.Contains(out, "Config OK") {
		t.Fatalf("expected ok output, got %q", out)
	}

	broken := writeFile(t, t.TempDir(), "config.yml", "version: 1\nservice:\n  rubric_flow: sideways\n")
	code, _, errOut = runCLI(t, "validate", "--config", broken)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(errOut, "validation failed") {
		t.Fatalf("expected validation error, got %q", errOut)
	}
}

// TestRubricCommand verifies local rubric parsing output.
func TestRubricCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rubric.txt", "A\nStrong thesis\n\nB\nSome evidence\n")
	code, out, errOut := runCLI(t, "rubric", path)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, errOut)
	}
	for _, want := range []string{"A:", "  - Strong thesis", "B:", "2 criteria"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

// TestRubricCommandReadsStdin verifies "-" reads from stdin.
func TestRubricCommandReadsStdin(t *testing.T) {
	orig := stdin
	stdin = strings.NewReader("Row A Thesis (0-1 points)\n\nRow B Evidence (0-4 points)\n")
	t.Cleanup(func() { stdin = orig })

	code, out, errOut := runCLI(t, "rubric", "--points", "-")
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, errOut)
	}
	if !strings.Contains(out, "- Thesis") || !strings.Contains(out, "- Evidence") {
		t.Fatalf("expected point criteria, got %q", out)
	}
}
