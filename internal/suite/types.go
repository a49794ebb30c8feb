package suite

import "github.com/giantswarm/prompteval/internal/prompt"

// Suite represents a loaded evaluation suite with its configuration and
// records. Models are NOT part of the suite -- they are provided at runtime.
type Suite struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Version     string           `yaml:"version"`
	Metric      string           `yaml:"metric"` // e.g. "partial_ratio" (default)
	RecordsFile string           `yaml:"records_file"`
	Prompt      Prompt           `yaml:"prompt"`
	Examples    []prompt.Example `yaml:"examples"`
	Records     []Record         `yaml:"-"` // loaded separately from CSV
}

// Prompt defines the prompt configuration for a suite. Template is the user
// prompt with {name} placeholders bound per record; SystemMessage is sent
// as-is with every request.
type Prompt struct {
	SystemMessage string `yaml:"system_message"`
	Template      string `yaml:"template"`
}

// Model defines a model to evaluate. Models are specified at runtime, not
// in suite config.
type Model struct {
	Name        string  `json:"name"`
	Temperature float64 `json:"temperature"`
}

// Record is a single evaluation input: template bindings plus an optional
// expected answer.
type Record struct {
	ID       string
	Bindings map[string]string
	Expected string
}

// Template returns the suite's prompt template with its few-shot examples
// applied.
func (s *Suite) Template() *prompt.Template {
	return prompt.New(s.Prompt.Template).WithExamples(s.Examples)
}
