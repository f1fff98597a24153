package workflow

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/reldocs/flow"
)

// Field names steps may write. Error and warnings use the flow package's
// well-known names.
const (
	FieldReleaseBranch  = "release_branch"
	FieldVersion        = "version"
	FieldBaseTag        = "base_tag"
	FieldDryRun         = "dry_run"
	FieldCurrentStep    = "current_step"
	FieldContext        = "context"
	FieldPRURL          = "pr_url"
	FieldPRNumber       = "pr_number"
	FieldGeneratedFiles = "generated_files"
	FieldCompletedAt    = "completed_at"
)

// State is the record threaded through the release graph.
type State struct {
	RunID         string `json:"runId"`
	ReleaseBranch string `json:"releaseBranch"`
	Version       string `json:"version"`
	BaseTag       string `json:"baseTag,omitempty"`
	DryRun        bool   `json:"dryRun,omitempty"`

	// Processing state
	CurrentStep string   `json:"currentStep,omitempty"`
	Error       string   `json:"error,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`

	// Gathered context
	Context *ReleaseContext `json:"context,omitempty"`

	// Results
	PRURL          string   `json:"prUrl,omitempty"`
	PRNumber       int      `json:"prNumber,omitempty"`
	GeneratedFiles []string `json:"generatedFiles,omitempty"`

	// Metadata
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

// NewState creates the initial state for a run.
func NewState(releaseBranch, version, baseTag string, dryRun bool) (State, error) {
	id, err := nanoid.New()
	if err != nil {
		return State{}, fmt.Errorf("generate run id: %w", err)
	}
	return State{
		RunID:         "run_" + id,
		ReleaseBranch: releaseBranch,
		Version:       version,
		BaseTag:       baseTag,
		DryRun:        dryRun,
		CurrentStep:   StepValidate,
		StartedAt:     time.Now().UTC(),
	}, nil
}

// Set implements flow.Record. It replaces a scalar field and returns the
// modified copy; the receiver is never mutated.
func (s State) Set(field string, value any) (State, error) {
	switch field {
	case FieldReleaseBranch:
		return s, setString(&s.ReleaseBranch, field, value)
	case FieldVersion:
		return s, setString(&s.Version, field, value)
	case FieldBaseTag:
		return s, setString(&s.BaseTag, field, value)
	case FieldCurrentStep:
		return s, setString(&s.CurrentStep, field, value)
	case flow.FieldError:
		return s, setString(&s.Error, field, value)
	case FieldPRURL:
		return s, setString(&s.PRURL, field, value)
	case FieldDryRun:
		v, ok := value.(bool)
		if !ok {
			return s, fmt.Errorf("field %s: want bool, got %T", field, value)
		}
		s.DryRun = v
		return s, nil
	case FieldPRNumber:
		v, ok := value.(int)
		if !ok {
			return s, fmt.Errorf("field %s: want int, got %T", field, value)
		}
		s.PRNumber = v
		return s, nil
	case FieldGeneratedFiles:
		v, ok := value.([]string)
		if !ok {
			return s, fmt.Errorf("field %s: want []string, got %T", field, value)
		}
		s.GeneratedFiles = append([]string(nil), v...)
		return s, nil
	case FieldCompletedAt:
		v, ok := value.(time.Time)
		if !ok {
			return s, fmt.Errorf("field %s: want time.Time, got %T", field, value)
		}
		s.CompletedAt = v
		return s, nil
	case FieldContext, flow.FieldWarnings:
		return s, fmt.Errorf("field %s is union-typed", field)
	default:
		return s, fmt.Errorf("unknown state field %q", field)
	}
}

// Union implements flow.Record for the two union-typed fields: warnings
// append, release contexts merge collection-wise.
func (s State) Union(field string, value any) (State, error) {
	switch field {
	case flow.FieldWarnings:
		var add []string
		switch v := value.(type) {
		case string:
			add = []string{v}
		case []string:
			add = v
		default:
			return s, fmt.Errorf("field %s: want string or []string, got %T", field, value)
		}
		merged := make([]string, 0, len(s.Warnings)+len(add))
		merged = append(merged, s.Warnings...)
		merged = append(merged, add...)
		s.Warnings = merged
		return s, nil
	case FieldContext:
		v, ok := value.(*ReleaseContext)
		if !ok {
			return s, fmt.Errorf("field %s: want *ReleaseContext, got %T", field, value)
		}
		s.Context = s.Context.merge(v)
		return s, nil
	default:
		return s, fmt.Errorf("field %q is not union-typed", field)
	}
}

// UnionField implements flow.Record.
func (s State) UnionField(field string) bool {
	return field == FieldContext || field == flow.FieldWarnings
}

// Failed reports whether the run halted with an error.
func (s State) Failed() bool { return s.Error != "" }

func setString(dst *string, field string, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %s: want string, got %T", field, value)
	}
	*dst = v
	return nil
}
