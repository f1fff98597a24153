package store

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// CleanupResult summarizes retention actions.
type CleanupResult struct {
	Deleted    []string `json:"deleted"`
	Kept       []string `json:"kept"`
	Errors     []string `json:"errors,omitempty"`
	SpaceSaved int64    `json:"spaceSaved"`
}

// Cleanup applies the retention policy: runs older than the retention
// window are removed, always keeping the newest KeepMinRuns and, when
// KeepFailed is set, every failed run. With dryRun nothing is deleted.
func (s *Store) Cleanup(dryRun bool) (*CleanupResult, error) {
	result := &CleanupResult{}

	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}

	// ListRuns is newest-first; make sure of it before applying
	// the keep-minimum window.
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	for i, run := range runs {
		keep := i < s.keepMinRuns ||
			run.StartedAt.After(cutoff) ||
			(s.keepFailed && run.Failed)

		if keep {
			result.Kept = append(result.Kept, run.RunID)
			continue
		}

		dir := s.RunDir(run.RunID)
		size := dirSize(dir)
		if !dryRun {
			if err := os.RemoveAll(dir); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
		}
		result.Deleted = append(result.Deleted, run.RunID)
		result.SpaceSaved += size
	}

	return result, nil
}

func dirSize(dir string) int64 {
	var size int64
	filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
