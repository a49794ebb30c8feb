package suite

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/prompteval/internal/scorer"
)

//go:embed all:testdata
var embeddedSuites embed.FS

// Load loads a suite by name, searching first in the external directory
// (if provided), then in the embedded suites.
func Load(name string, externalDir string) (*Suite, error) {
	// Try external directory first.
	if externalDir != "" {
		path := filepath.Join(externalDir, name)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return loadFromFS(os.DirFS(path), name)
		}
	}

	// Fall back to embedded suites.
	// Use path.Join (not filepath.Join) because embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedSuites, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("suite %q not found: %w", name, err)
	}
	return loadFromFS(subFS, name)
}

// List returns the names of all available suites.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	// List embedded suites.
	entries, err := fs.ReadDir(embeddedSuites, "testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
	}

	// List external suites.
	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !seen[e.Name()] {
					names = append(names, e.Name())
				}
			}
		}
	}

	return names, nil
}

func loadFromFS(fsys fs.FS, name string) (*Suite, error) {
	// Load config.yaml.
	configData, err := fs.ReadFile(fsys, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml for suite %q: %w", name, err)
	}

	var suite Suite
	if err := yaml.Unmarshal(configData, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml for suite %q: %w", name, err)
	}

	if suite.Metric == "" {
		suite.Metric = scorer.DefaultMetric
	}
	if suite.RecordsFile == "" {
		suite.RecordsFile = "records.csv"
	}
	if strings.TrimSpace(suite.Prompt.Template) == "" {
		return nil, fmt.Errorf("suite %q has no prompt template", name)
	}

	// Validate the metric early so a misconfigured suite fails at load time.
	if _, err := scorer.Get(suite.Metric); err != nil {
		return nil, fmt.Errorf("suite %q: %w", name, err)
	}

	// Load records CSV.
	records, err := loadRecordsFromFS(fsys, suite.RecordsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for suite %q: %w", name, err)
	}
	suite.Records = records

	return &suite, nil
}

// loadRecordsFromFS reads the records CSV. The ID column is required and
// the Expected column is optional; every other column becomes a template
// binding named after its header.
func loadRecordsFromFS(fsys fs.FS, filename string) ([]Record, error) {
	f, err := fsys.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	// Read header.
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	idCol, ok := colIndex["ID"]
	if !ok {
		return nil, fmt.Errorf("missing required CSV column: ID")
	}
	expectedCol, hasExpected := colIndex["Expected"]

	var records []Record
	for lineNum := 2; ; lineNum++ { // lineNum starts at 2 (1-indexed, after header).
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", lineNum, err)
		}

		rec := Record{
			ID:       row[idCol],
			Bindings: make(map[string]string),
		}
		if hasExpected {
			rec.Expected = row[expectedCol]
		}
		for col, idx := range colIndex {
			if col == "ID" || col == "Expected" {
				continue
			}
			rec.Bindings[col] = row[idx]
		}
		records = append(records, rec)
	}

	return records, nil
}
