package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tyler-sommer/stick"

	"github.com/markdave123-py/quizsmith/internal/core"
)

//go:embed templates/*.twig
var templateFS embed.FS

// Template names selected by Rule.
const (
	TemplateVocabulary = "vocabulary"
	TemplateGrammar    = "grammar"
	TemplateIdiom      = "idiom"
	TemplateGeneric    = "generic"
)

// IdiomBlank is the fixed-width placeholder used by the idiom template.
const IdiomBlank = "________"

// Builder renders prompts from the embedded Twig templates.
// It holds no per-request state and is safe for concurrent use.
type Builder struct {
	env       *stick.Env
	templates map[string]string
}

// NewBuilder loads every embedded template.
func NewBuilder() (*Builder, error) {
	b := &Builder{env: stick.New(nil), templates: make(map[string]string)}
	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".twig") {
			return nil
		}
		content, err := fs.ReadFile(templateFS, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		b.templates[strings.TrimSuffix(path.Base(p), ".twig")] = string(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load prompt templates: %w", err)
	}
	return b, nil
}

// Rule returns the template selected for subject and format. Rules are
// checked in order vocabulary, grammar, idiom; anything else is generic.
func Rule(subject, format string) string {
	if CanonicalSubject(subject) != SubjectEnglish {
		return TemplateGeneric
	}
	switch CanonicalFormat(format) {
	case FormatFourChoiceVocabulary:
		return TemplateVocabulary
	case FormatFourChoiceGrammar:
		return TemplateGrammar
	case FormatFourChoiceIdiom:
		return TemplateIdiom
	default:
		return TemplateGeneric
	}
}

// Build renders the prompt for one batch. The source text is included verbatim.
func (b *Builder) Build(subject, format string, count int, text string) (string, error) {
	if count <= 0 {
		return "", fmt.Errorf("%w: %d", core.ErrInvalidCount, count)
	}
	vars := map[string]stick.Value{
		"subject": subject,
		"format":  format,
		"count":   count,
		"text":    text,
		"blank":   IdiomBlank,
	}

	parts := []string{"base", Rule(subject, format)}
	if IsFourChoice(format) {
		parts = append(parts, "four_choice_suffix")
	} else {
		parts = append(parts, "answer_format")
	}
	return b.renderAll(parts, vars)
}

// BuildTopic renders a prompt for questions about a topic with no source text.
// Empty category and difficulty fall back to "general" and "normal".
func (b *Builder) BuildTopic(category, difficulty string, count int) (string, error) {
	if count <= 0 {
		return "", fmt.Errorf("%w: %d", core.ErrInvalidCount, count)
	}
	if strings.TrimSpace(category) == "" {
		category = "general"
	}
	if strings.TrimSpace(difficulty) == "" {
		difficulty = "normal"
	}
	vars := map[string]stick.Value{
		"category":   category,
		"difficulty": difficulty,
		"count":      count,
	}
	return b.renderAll([]string{"topic", "four_choice_suffix"}, vars)
}

// ChatSystemPrompt is the system instruction for free-form chat about a file.
const ChatSystemPrompt = "You are a helpful assistant."

// BuildChat renders the free-form instruction sent with a single file's text.
func (b *Builder) BuildChat(text string) (string, error) {
	return b.render("chat", map[string]stick.Value{"text": text})
}

// SystemPrompt returns the default system instruction for generation calls.
func (b *Builder) SystemPrompt() string {
	out, err := b.render("system", nil)
	if err != nil {
		return ""
	}
	return out
}

func (b *Builder) renderAll(names []string, vars map[string]stick.Value) (string, error) {
	sections := make([]string, 0, len(names))
	for _, name := range names {
		out, err := b.render(name, vars)
		if err != nil {
			return "", err
		}
		sections = append(sections, out)
	}
	return strings.Join(sections, "\n\n"), nil
}

func (b *Builder) render(name string, vars map[string]stick.Value) (string, error) {
	tpl, ok := b.templates[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	var out strings.Builder
	if err := b.env.Execute(tpl, &out, vars); err != nil {
		return "", fmt.Errorf("execute %q: %w", name, err)
	}
	return strings.TrimSpace(out.String()), nil
}
