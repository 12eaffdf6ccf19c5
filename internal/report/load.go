package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"essaylens/internal/analysis"
)

// RunEntry summarizes one stored run for listings.
type RunEntry struct {
	RunID   string
	Dir     string
	Result  analysis.Result
	HasHTML bool
}

// LoadResult reads a result.json file.
func LoadResult(path string) (analysis.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return analysis.Result{}, err
	}
	var result analysis.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return analysis.Result{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return result, nil
}

// ListRuns loads every run under outputDir, newest first. Directories
// without a readable result.json are skipped.
func ListRuns(outputDir string) ([]RunEntry, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	runs := make([]RunEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		paths := OutputPaths{Root: outputDir, RunID: entry.Name()}
		result, err := LoadResult(paths.ResultPath())
		if err != nil {
			continue
		}
		_, htmlErr := os.Stat(paths.HTMLPath())
		runs = append(runs, RunEntry{
			RunID:   entry.Name(),
			Dir:     paths.RunDir(),
			Result:  result,
			HasHTML: htmlErr == nil,
		})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].RunID > runs[j].RunID })
	return runs, nil
}

// ResolveRun finds a run by id, unique id prefix, or "latest".
func ResolveRun(outputDir, ref string) (analysis.Result, string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return analysis.Result{}, "", fmt.Errorf("run ref is required")
	}
	if ref == "latest" {
		runDir, err := findLatestRunDir(outputDir)
		if err != nil {
			return analysis.Result{}, "", err
		}
		result, err := LoadResult(filepath.Join(runDir, ResultFile))
		return result, runDir, err
	}
	runDir, err := findRunByID(outputDir, ref)
	if err != nil {
		return analysis.Result{}, "", err
	}
	result, err := LoadResult(filepath.Join(runDir, ResultFile))
	return result, runDir, err
}

func runIDs(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func findLatestRunDir(outputDir string) (string, error) {
	ids, err := runIDs(outputDir)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no runs found in %s", outputDir)
	}
	return filepath.Join(outputDir, ids[len(ids)-1]), nil
}

func findRunByID(outputDir, ref string) (string, error) {
	ids, err := runIDs(outputDir)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, id := range ids {
		if id == ref {
			return filepath.Join(outputDir, id), nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("run %s not found", ref)
	case 1:
		return filepath.Join(outputDir, matches[0]), nil
	}
	return "", fmt.Errorf("run ref %s is ambiguous (%d matches)", ref, len(matches))
}
