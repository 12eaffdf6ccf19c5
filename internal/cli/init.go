package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"essaylens/internal/config"
	"essaylens/internal/vcs"
)

func newInitCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold .essaylens/config.yml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), a)
		},
	}
}

func runInit(ctx context.Context, a *app) error {
	prompt := newPrompter(stdin, a.stdout)

	var targetPath, configDir, repoRoot string
	if path := strings.TrimSpace(a.configPath); path == "" {
		repoRoot = discoverGitRoot(ctx, "")
		baseDir := repoRoot
		if baseDir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("init failed: %w", err)
			}
			baseDir = wd
		}
		configDir = config.ConfigDir(baseDir)
		targetPath = config.ConfigPath(baseDir)
	} else {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("init failed: %w", err)
		}
		targetPath = abs
		configDir = filepath.Dir(abs)
		repoRoot = discoverGitRoot(ctx, config.RepoRootFromConfigPath(abs))
	}

	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return fmt.Errorf("init failed: config directory %q is not a directory", configDir)
	}
	if info, err := os.Stat(targetPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("init failed: config path %q is a directory", targetPath)
		}
		return fmt.Errorf("init failed: config file already exists at %q", targetPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("init failed: stat config file: %w", err)
	}

	confirm, err := prompt.YesNo(fmt.Sprintf("Initialize essaylens config in %s?", configDir), true)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	if !confirm {
		return fmt.Errorf("init cancelled")
	}
	serviceURL, err := prompt.String("Scoring service URL", config.DefaultServiceURL)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	flow, err := prompt.Choice("Rubric flow", config.RubricFlowList, config.RubricFlowList, config.RubricFlowID)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	outputDir, err := prompt.String("Results folder", config.DefaultOutputDir)
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	var ignoreEntries []string
	if repoRoot != "" {
		pending, err := pendingIgnoreEntries(ctx, repoRoot, config.RepoRootFromConfigPath(targetPath), outputDir, config.DefaultHistoryPath)
		if err != nil {
			return fmt.Errorf("init failed: %w", err)
		}
		if len(pending) > 0 {
			add, err := prompt.YesNo(fmt.Sprintf("Add %s to .gitignore?", strings.Join(pending, ", ")), true)
			if err != nil {
				return fmt.Errorf("init failed: %w", err)
			}
			if add {
				ignoreEntries = pending
			}
		}
	}

	if err := config.Scaffold(targetPath, config.ScaffoldOptions{
		ServiceURL: serviceURL,
		RubricFlow: flow,
		OutputDir:  outputDir,
	}); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	fmt.Fprintf(a.stdout, "Wrote %s\n", targetPath)

	if len(ignoreEntries) > 0 {
		if err := appendGitignore(repoRoot, ignoreEntries); err != nil {
			return fmt.Errorf("init failed: update .gitignore: %w", err)
		}
		fmt.Fprintf(a.stdout, "Updated %s\n", filepath.Join(repoRoot, ".gitignore"))
	}
	return nil
}

// discoverGitRoot returns the git root or empty when not found.
func discoverGitRoot(ctx context.Context, startDir string) string {
	root, err := vcs.DiscoverRepoRoot(ctx, startDir)
	if err != nil {
		return ""
	}
	return root
}
