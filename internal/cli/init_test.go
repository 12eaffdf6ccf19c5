package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"essaylens/internal/config"
)

func withStdin(t *testing.T, input string) {
	t.Helper()
	orig := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = orig })
}

// TestInitCommandCreatesConfig verifies prompted answers land in the scaffold.
func TestInitCommandCreatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".essaylens", "config.yml")
	withStdin(t, "y\nhttp://scoring.local:9000\nid\nout\n")

	code, out, errOut := runCLI(t, "init", "--config", path)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, errOut)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Fatalf("expected write message, got %q", out)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load scaffold: %v", err)
	}
	if cfg.Service.BaseURL != "http://scoring.local:9000" {
		t.Fatalf("unexpected service url: %s", cfg.Service.BaseURL)
	}
	if cfg.Service.RubricFlow != config.RubricFlowID {
		t.Fatalf("unexpected flow: %s", cfg.Service.RubricFlow)
	}
	if filepath.Base(cfg.Output.Dir) != "out" {
		t.Fatalf("unexpected output dir: %s", cfg.Output.Dir)
	}
}

// TestInitCommandDefaults verifies empty answers keep the defaults.
func TestInitCommandDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".essaylens", "config.yml")
	withStdin(t, "\n\n\n\n\n")

	code, _, errOut := runCLI(t, "init", "--config", path)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, errOut)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load scaffold: %v", err)
	}
	if cfg.Service.BaseURL != config.DefaultServiceURL || cfg.Service.RubricFlow != config.RubricFlowList {
		t.Fatalf("unexpected defaults: %+v", cfg.Service)
	}
}

// TestInitCommandRefusesOverwrite verifies an existing config is left alone.
func TestInitCommandRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	withStdin(t, "y\n")

	code, out, errOut := runCLI(t, "init", "--config", path)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if out != "" {
		t.Fatalf("expected no stdout output, got %q", out)
	}
	if !strings.Contains(errOut, "already exists") {
		t.Fatalf("expected overwrite error, got %q", errOut)
	}
}

// TestInitCommandCancelled verifies declining the first prompt writes nothing.
func TestInitCommandCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".essaylens", "config.yml")
	withStdin(t, "n\n")

	code, _, errOut := runCLI(t, "init", "--config", path)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(errOut, "init cancelled") {
		t.Fatalf("expected cancel message, got %q", errOut)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no config file, got %v", err)
	}
}
