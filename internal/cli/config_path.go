package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"essaylens/internal/config"
)

// resolveConfigPath normalizes a config path or finds it from the working
// directory.
func resolveConfigPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.FindConfigPath("")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return abs, nil
}
