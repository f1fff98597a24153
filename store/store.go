package store

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/randalmurphal/reldocs/workflow"
)

// ErrArtifactNotFound is returned when a run artifact does not exist.
var ErrArtifactNotFound = errors.New("artifact not found")

// Standard artifact names.
const (
	ArtifactState   = "state.json"
	ArtifactNotes   = "release-notes.md"
	ArtifactEdits   = "doc-edits.json"
	ArtifactContext = "context.json"
)

// Config holds configuration for run storage.
type Config struct {
	BaseDir       string // Base directory for storage (default: ".reldocs")
	CompressAbove int64  // Compress artifacts larger than this (default: 10KB)
	RetentionDays int    // Days to keep runs (default: 30)
	KeepMinRuns   int    // Minimum runs to keep regardless of age (default: 20)
	KeepFailed    bool   // Never delete failed runs
}

// Store manages run artifacts on the local filesystem.
type Store struct {
	baseDir       string
	compressAbove int64
	retentionDays int
	keepMinRuns   int
	keepFailed    bool
}

// ArtifactInfo contains metadata about a stored artifact.
type ArtifactInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// New creates a run store with the given config.
func New(cfg Config) *Store {
	if cfg.BaseDir == "" {
		cfg.BaseDir = ".reldocs"
	}
	if cfg.CompressAbove == 0 {
		cfg.CompressAbove = 10 * 1024
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}
	if cfg.KeepMinRuns == 0 {
		cfg.KeepMinRuns = 20
	}

	return &Store{
		baseDir:       cfg.BaseDir,
		compressAbove: cfg.CompressAbove,
		retentionDays: cfg.RetentionDays,
		keepMinRuns:   cfg.KeepMinRuns,
		keepFailed:    cfg.KeepFailed,
	}
}

// BaseDir returns the storage base directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// RunDir returns the directory for a run.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, "runs", runID)
}

// SaveArtifact saves an artifact with automatic compression.
func (s *Store) SaveArtifact(runID, name string, data []byte) error {
	dir := s.RunDir(runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	if int64(len(data)) > s.compressAbove {
		return saveCompressed(path+".gz", data)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadArtifact loads an artifact, transparently decompressing it.
func (s *Store) LoadArtifact(runID, name string) ([]byte, error) {
	path := filepath.Join(s.RunDir(runID), name)

	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}
	if data, err := loadCompressed(path + ".gz"); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrArtifactNotFound, runID, name)
}

// HasArtifact reports whether an artifact exists for the run.
func (s *Store) HasArtifact(runID, name string) bool {
	path := filepath.Join(s.RunDir(runID), name)
	if _, err := os.Stat(path); err == nil {
		return true
	}
	_, err := os.Stat(path + ".gz")
	return err == nil
}

// ListArtifacts lists artifacts stored for a run.
func (s *Store) ListArtifacts(runID string) ([]ArtifactInfo, error) {
	entries, err := os.ReadDir(s.RunDir(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var infos []ArtifactInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, ArtifactInfo{
			Name:       strings.TrimSuffix(entry.Name(), ".gz"),
			Size:       fi.Size(),
			Compressed: strings.HasSuffix(entry.Name(), ".gz"),
			CreatedAt:  fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// SaveRun persists everything worth keeping from a finished run.
func (s *Store) SaveRun(state workflow.State) error {
	if state.RunID == "" {
		return fmt.Errorf("store: state has no run ID")
	}

	if err := s.saveJSON(state.RunID, ArtifactState, state); err != nil {
		return err
	}
	if state.Context == nil {
		return nil
	}

	if state.Context.ReleaseNotes != "" {
		if err := s.SaveArtifact(state.RunID, ArtifactNotes, []byte(state.Context.ReleaseNotes)); err != nil {
			return err
		}
	}
	if len(state.Context.DocEdits) > 0 {
		if err := s.saveJSON(state.RunID, ArtifactEdits, state.Context.DocEdits); err != nil {
			return err
		}
	}
	return s.saveJSON(state.RunID, ArtifactContext, state.Context)
}

// LoadState loads the persisted workflow state for a run.
func (s *Store) LoadState(runID string) (workflow.State, error) {
	var state workflow.State
	data, err := s.LoadArtifact(runID, ArtifactState)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("decode state for %s: %w", runID, err)
	}
	return state, nil
}

// LoadNotes loads the persisted release notes for a run.
func (s *Store) LoadNotes(runID string) (string, error) {
	data, err := s.LoadArtifact(runID, ArtifactNotes)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RunInfo summarizes a stored run.
type RunInfo struct {
	RunID     string    `json:"runId"`
	Release   string    `json:"release"`
	Version   string    `json:"version"`
	Failed    bool      `json:"failed"`
	PRURL     string    `json:"prUrl,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns() ([]RunInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "runs"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info := RunInfo{RunID: entry.Name()}
		if state, err := s.LoadState(entry.Name()); err == nil {
			info.Release = state.ReleaseBranch
			info.Version = state.Version
			info.Failed = state.Failed()
			info.PRURL = state.PRURL
			info.StartedAt = state.StartedAt
		}
		runs = append(runs, info)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	return runs, nil
}

func (s *Store) saveJSON(runID, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.SaveArtifact(runID, name, data)
}

func saveCompressed(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func loadCompressed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
