package cli

import (
	"bytes"
	"strings"
	"testing"
)

// TestPrompterDefaults verifies empty answers and exhausted input use defaults.
func TestPrompterDefaults(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("\n"), &out)
	value, err := p.String("URL", "http://x")
	if err != nil || value != "http://x" {
		t.Fatalf("expected default, got %q (%v)", value, err)
	}
	yes, err := p.YesNo("Continue?", true)
	if err != nil || !yes {
		t.Fatalf("expected default yes at EOF, got %v (%v)", yes, err)
	}
	if _, err := p.String("Name", ""); err == nil {
		t.Fatalf("expected error for missing required input")
	}
	if !strings.Contains(out.String(), "URL [http://x]: ") || !strings.Contains(out.String(), "Continue? [Y/n]: ") {
		t.Fatalf("unexpected prompts %q", out.String())
	}
}

// TestPrompterRetriesInvalidAnswers verifies bad answers are asked again.
func TestPrompterRetriesInvalidAnswers(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("maybe\nN\nsideways\nID\n"), &out)
	yes, err := p.YesNo("Continue?", true)
	if err != nil || yes {
		t.Fatalf("expected no, got %v (%v)", yes, err)
	}
	flow, err := p.Choice("Rubric flow", "list", "list", "id")
	if err != nil || flow != "id" {
		t.Fatalf("expected id, got %q (%v)", flow, err)
	}
	if !strings.Contains(out.String(), "Please answer yes or no.") || !strings.Contains(out.String(), "Please enter one of: list, id") {
		t.Fatalf("expected retry hints, got %q", out.String())
	}
}

// TestPrompterInvalidAtEOF verifies a bad final answer fails instead of looping.
func TestPrompterInvalidAtEOF(t *testing.T) {
	p := newPrompter(strings.NewReader("sideways"), &bytes.Buffer{})
	if _, err := p.Choice("Rubric flow", "list", "list", "id"); err == nil {
		t.Fatalf("expected error for invalid answer at EOF")
	}
}
