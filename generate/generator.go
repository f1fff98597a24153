package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	llm "github.com/randalmurphal/llmkit/claude"
	"github.com/randalmurphal/llmkit/model"

	"github.com/randalmurphal/reldocs/prompt"
	"github.com/randalmurphal/reldocs/workflow"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// ModelForTier maps a quality tier to a model name. Release notes are
// summarization work, so the default tier is sufficient for most runs.
func ModelForTier(tier model.Tier) model.ModelName {
	switch tier {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}

// ParseTier maps a configured tier name to a model tier. An empty name
// selects the default tier.
func ParseTier(name string) (model.Tier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return model.TierDefault, nil
	case "thinking":
		return model.TierThinking, nil
	case "fast":
		return model.TierFast, nil
	default:
		return model.TierDefault, fmt.Errorf("unknown model tier %q (want thinking, default, or fast)", name)
	}
}

// ResolveModel picks the model for a run. An explicit model name always
// wins; otherwise the configured tier chooses one, falling back to
// DefaultModel when neither is set.
func ResolveModel(modelName, tierName string) (string, error) {
	if modelName != "" {
		return modelName, nil
	}
	if tierName == "" {
		return DefaultModel, nil
	}
	tier, err := ParseTier(tierName)
	if err != nil {
		return "", err
	}
	return string(ModelForTier(tier)), nil
}

// Generator produces release notes and plans documentation edits.
// With a nil client it falls back to deterministic template rendering,
// which is also what dry runs without LLM access use.
type Generator struct {
	client  llm.Client
	prompts *prompt.Loader
	log     *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClient sets the LLM client used for release notes generation.
func WithClient(client llm.Client) Option {
	return func(g *Generator) { g.client = client }
}

// WithPrompts sets the prompt loader.
func WithPrompts(loader *prompt.Loader) Option {
	return func(g *Generator) { g.prompts = loader }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.log = logger }
}

// New creates a Generator. Without WithClient it renders release notes
// deterministically from the gathered context.
func New(opts ...Option) *Generator {
	g := &Generator{
		prompts: prompt.NewLoader("."),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.prompts == nil {
		g.prompts = prompt.NewLoader(".")
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	return g
}

// NewClaudeGenerator creates a Generator backed by the claude CLI.
// An empty modelName selects DefaultModel.
func NewClaudeGenerator(modelName, workdir string, opts ...Option) *Generator {
	if modelName == "" {
		modelName = DefaultModel
	}
	client := llm.NewClaudeCLI(
		llm.WithModel(modelName),
		llm.WithWorkdir(workdir),
		llm.WithDangerouslySkipPermissions(),
	)
	return New(append(opts, WithClient(client))...)
}

// ReleaseNotes generates the release notes document for the context.
func (g *Generator) ReleaseNotes(ctx context.Context, rc *workflow.ReleaseContext) (string, error) {
	if rc == nil {
		return "", fmt.Errorf("generate: release context is nil")
	}

	if g.client == nil {
		g.log.Debug("no LLM configured, rendering release notes from template",
			"version", rc.Version)
		return renderNotes(rc), nil
	}

	systemPrompt, err := g.prompts.LoadWithVars("release-notes", map[string]any{
		"version": rc.Version,
	})
	if err != nil {
		return "", fmt.Errorf("load release-notes prompt: %w", err)
	}

	result, err := g.client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: notesPrompt(rc)}},
	})
	if err != nil {
		return "", fmt.Errorf("generate release notes for %s: %w", rc.Version, err)
	}

	g.log.Debug("release notes generated",
		"version", rc.Version,
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens)

	notes := strings.TrimSpace(result.Content)
	if notes == "" {
		return "", fmt.Errorf("generate release notes for %s: empty completion", rc.Version)
	}
	return notes, nil
}
