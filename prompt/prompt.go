package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default prompts shipped with the binary. A project can override any of
// them by dropping a file with the same name into .reldocs/prompts/.
//
//go:embed prompts/*.txt
var embedded embed.FS

// Loader resolves prompt templates by name. Project-local files win over
// the embedded defaults, so teams can tune the release notes voice
// without rebuilding.
type Loader struct {
	searchDirs []string
	cache      map[string]*template.Template
	funcs      template.FuncMap
}

// NewLoader creates a loader rooted at the given project directory.
// Lookup order: .reldocs/prompts/, then prompts/, then the embedded
// defaults.
func NewLoader(projectDir string) *Loader {
	return &Loader{
		searchDirs: []string{
			filepath.Join(projectDir, ".reldocs", "prompts"),
			filepath.Join(projectDir, "prompts"),
		},
		cache: make(map[string]*template.Template),
		funcs: templateFuncs(),
	}
}

// Load returns the rendered prompt without variable substitution.
func (l *Loader) Load(name string) (string, error) {
	return l.LoadWithVars(name, nil)
}

// LoadWithVars renders the named prompt with the given variables.
func (l *Loader) LoadWithVars(name string, vars map[string]any) (string, error) {
	tmpl, err := l.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// Exists reports whether a prompt is available under the given name.
func (l *Loader) Exists(name string) bool {
	_, err := l.read(name)
	return err == nil
}

func (l *Loader) template(name string) (*template.Template, error) {
	if tmpl, ok := l.cache[name]; ok {
		return tmpl, nil
	}

	content, err := l.read(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Funcs(l.funcs).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	l.cache[name] = tmpl
	return tmpl, nil
}

func (l *Loader) read(name string) (string, error) {
	filename := name + ".txt"
	for _, dir := range l.searchDirs {
		if data, err := os.ReadFile(filepath.Join(dir, filename)); err == nil {
			return string(data), nil
		}
	}
	data, err := embedded.ReadFile("prompts/" + filename)
	if err != nil {
		return "", fmt.Errorf("prompt not found: %s", name)
	}
	return string(data), nil
}

// templateFuncs returns the helpers available inside prompt templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":    strings.Join,
		"trim":    strings.TrimSpace,
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"title":   cases.Title(language.English).String,
		"default": defaultValue,
	}
}

// defaultValue substitutes a fallback for nil or empty-string values.
func defaultValue(fallback, value any) any {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok && s == "" {
		return fallback
	}
	return value
}
