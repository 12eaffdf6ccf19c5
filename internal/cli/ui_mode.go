package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// UI modes accepted by --ui and ui.mode.
const (
	uiAuto  = "auto"
	uiLive  = "live"
	uiPlain = "plain"
)

// uiModeDecision captures whether a command drives the live view.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode picks the live view or plain output. forcePlain is set by
// --verbose and --json, whose output would otherwise be drawn over. A TERM of
// "dumb" cannot host the full-screen view, so auto falls back to plain and
// live falls back with a warning.
func resolveUIMode(mode string, forcePlain bool, stdout io.Writer) (uiModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = uiAuto
	}
	switch normalized {
	case uiAuto, uiLive, uiPlain:
	default:
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
	if forcePlain || normalized == uiPlain {
		return uiModeDecision{}, nil
	}
	capable, reason := liveCapable(stdout)
	if normalized == uiAuto || capable {
		return uiModeDecision{useLive: capable}, nil
	}
	return uiModeDecision{warning: fmt.Sprintf("Live UI requested but %s; falling back to plain output.", reason)}, nil
}

// liveCapable reports whether stdout can host the live view, and why not.
func liveCapable(stdout io.Writer) (bool, string) {
	if !isTerminal(stdout) {
		return false, "stdout is not a TTY"
	}
	if value, ok := lookupEnv("TERM"); ok && value == "dumb" {
		return false, "TERM is dumb"
	}
	return true, ""
}

// colorDisabled reports whether NO_COLOR is set to a non-empty value.
func colorDisabled() bool {
	value, ok := lookupEnv("NO_COLOR")
	return ok && value != ""
}

// defaultIsTerminal inspects stdout for TTY support.
func defaultIsTerminal(stdout io.Writer) bool {
	if stdout == nil {
		return false
	}
	if file, ok := stdout.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := stdout.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
