// Package prompt renders parameterized prompt templates.
//
// A template is a plain string containing named placeholders of the form
// {name}. Rendering substitutes every placeholder with its bound value and
// preserves all literal text verbatim. Rendering is all-or-nothing: a
// placeholder without a binding fails the render rather than being dropped
// or default-filled.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {name} placeholders. Braces that do not wrap a
// valid identifier are treated as literal text.
var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// MissingBindingError is returned when a template references a placeholder
// that has no corresponding binding.
type MissingBindingError struct {
	Placeholder string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("no binding for placeholder %q", e.Placeholder)
}

// Template is a prompt template with {name} placeholders. Few-shot examples
// attached via WithExamples are kept apart from the template text so their
// content stays verbatim even when it happens to contain brace syntax.
type Template struct {
	text     string
	examples []Example
}

// New creates a Template from the given text.
func New(text string) *Template {
	return &Template{text: text}
}

// Text returns the raw template text, without example blocks.
func (t *Template) Text() string {
	return t.text
}

// Placeholders returns the unique placeholder names referenced by the
// template, in order of first appearance.
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(t.text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes every placeholder with its bound value. It fails with
// a *MissingBindingError naming the first unresolved placeholder. Bindings
// that the template does not reference are ignored.
func (t *Template) Render(bindings map[string]string) (string, error) {
	for _, name := range t.Placeholders() {
		if _, ok := bindings[name]; !ok {
			return "", &MissingBindingError{Placeholder: name}
		}
	}

	out := placeholderPattern.ReplaceAllStringFunc(t.text, func(match string) string {
		name := match[1 : len(match)-1]
		return bindings[name]
	})
	return t.examplePrefix() + out, nil
}

// Example is a fixed input/output pair embedded verbatim in a few-shot
// prompt. Ordering is significant and preserved as given.
type Example struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// WithExamples returns a new Template that prepends the examples as
// Input/Output blocks to every rendered prompt. Example text is literal:
// braces inside it are never treated as placeholders and need no bindings.
func (t *Template) WithExamples(examples []Example) *Template {
	if len(examples) == 0 {
		return t
	}
	return &Template{
		text:     t.text,
		examples: append(append([]Example{}, t.examples...), examples...),
	}
}

func (t *Template) examplePrefix() string {
	var b strings.Builder
	for _, ex := range t.examples {
		fmt.Fprintf(&b, "Input: %s\nOutput: %s\n\n", ex.Input, ex.Output)
	}
	return b.String()
}
