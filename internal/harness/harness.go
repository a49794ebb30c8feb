// Package harness runs evaluation suites: it renders one prompt per
// record, sends it to a text generation client, scores the response
// against the expected answer when one is present, and aggregates scores
// across the batch.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/prompteval/internal/llm"
	"github.com/giantswarm/prompteval/internal/scorer"
	"github.com/giantswarm/prompteval/internal/suite"
)

// ProgressFunc is called to report progress during an evaluation run.
type ProgressFunc func(model string, recordIndex, totalRecords int)

// Record is a single evaluation record: the rendered prompt, the model's
// answer, and the score when an expected answer was present.
type Record struct {
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt"`
	Expected  string   `json:"expected,omitempty"`
	Predicted string   `json:"predicted,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	Duration  float64  `json:"duration_seconds"`
}

// ModelRun holds the results for a single model within a run.
type ModelRun struct {
	ModelName   string          `json:"model_name"`
	Duration    time.Duration   `json:"-"`
	RecordsFile string          `json:"records_file"`
	ReportFile  string          `json:"report_file"`
	Records     []*Record       `json:"-"`
	Summary     *scorer.Summary `json:"summary,omitempty"`
}

// Run represents metadata and results for a complete evaluation run.
type Run struct {
	ID        string        `json:"id"`
	Suite     string        `json:"suite"`
	Metric    string        `json:"metric"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
	Models    []ModelRun    `json:"models"`
}

// Harness orchestrates the render -> generate -> score pipeline.
type Harness struct {
	client          llm.Client
	metric          scorer.Metric
	outputDir       string
	progress        ProgressFunc
	maxOutputTokens int
}

// NewHarness creates a new evaluation harness.
func NewHarness(client llm.Client, metric scorer.Metric, outputDir string) *Harness {
	return &Harness{
		client:    client,
		metric:    metric,
		outputDir: outputDir,
	}
}

// SetProgressFunc sets the progress callback.
func (h *Harness) SetProgressFunc(fn ProgressFunc) {
	h.progress = fn
}

// SetMaxOutputTokens caps the generated output length per request.
// Zero means no explicit cap.
func (h *Harness) SetMaxOutputTokens(n int) {
	h.maxOutputTokens = n
}

// Run executes a suite for the given models and writes results.
//
// Records within one model's batch are processed strictly sequentially and
// results preserve input order. Rendering or generation failures halt the
// batch: an error for one record fails the run rather than being skipped
// silently, and generation errors are returned to the caller without
// interpretation or retries.
func (h *Harness) Run(ctx context.Context, s *suite.Suite, models []suite.Model) (*Run, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("no models specified for evaluation run")
	}
	if len(s.Records) == 0 {
		return nil, fmt.Errorf("suite has no records")
	}

	tmpl := s.Template()

	timestamp := time.Now()
	sanitizedName := strings.ReplaceAll(s.Name, " ", "_")
	runID := fmt.Sprintf("%s_%s_%s",
		sanitizedName,
		timestamp.Format("20060102-150405"),
		uuid.NewString()[:8],
	)

	// Create output directory.
	outputPath := filepath.Join(h.outputDir, runID)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	run := &Run{
		ID:        runID,
		Suite:     s.Name,
		Metric:    h.metric.Name(),
		Timestamp: timestamp,
		Models:    make([]ModelRun, 0, len(models)),
	}

	for _, model := range models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slog.Info("running suite",
			"model", model.Name,
			"records", len(s.Records),
			"metric", h.metric.Name(),
			"temperature", model.Temperature,
		)

		modelStart := time.Now()
		records, err := h.runModel(ctx, tmpl, s, model)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", model.Name, err)
		}

		modelRun := ModelRun{
			ModelName: model.Name,
			Duration:  time.Since(modelStart),
			Records:   records,
		}

		if summary, err := Summarize(records); err == nil {
			modelRun.Summary = summary
		}

		if err := writeModelFiles(outputPath, s.Name, run.Metric, &modelRun); err != nil {
			return nil, err
		}
		run.Models = append(run.Models, modelRun)

		slog.Info("model evaluation complete",
			"model", model.Name,
			"records", len(records),
			"duration", modelRun.Duration,
		)
	}

	run.Duration = time.Since(timestamp)

	if err := writeRunManifest(outputPath, run); err != nil {
		return nil, fmt.Errorf("failed to write run manifest: %w", err)
	}

	return run, nil
}

func (h *Harness) runModel(ctx context.Context, tmpl renderer, s *suite.Suite, model suite.Model) ([]*Record, error) {
	records := make([]*Record, 0, len(s.Records))

	for i, in := range s.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if h.progress != nil {
			h.progress(model.Name, i+1, len(s.Records))
		}

		rendered, err := tmpl.Render(in.Bindings)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", in.ID, err)
		}

		start := time.Now()
		resp, err := h.client.Generate(ctx, llm.GenerateRequest{
			Model:           model.Name,
			SystemMessage:   s.Prompt.SystemMessage,
			Prompt:          rendered,
			Temperature:     model.Temperature,
			MaxOutputTokens: h.maxOutputTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", in.ID, err)
		}

		rec := &Record{
			ID:        in.ID,
			Prompt:    rendered,
			Expected:  in.Expected,
			Predicted: resp.Text,
			Duration:  time.Since(start).Seconds(),
		}
		if in.Expected != "" {
			score := h.metric.Score(in.Expected, resp.Text)
			rec.Score = &score
		}
		records = append(records, rec)
	}

	return records, nil
}

// renderer is satisfied by *prompt.Template.
type renderer interface {
	Render(bindings map[string]string) (string, error)
}

// Summarize computes batch statistics over the scored records.
// Records without a score (no expected answer) are excluded; a batch with
// no scored records returns scorer.ErrEmptyBatch.
func Summarize(records []*Record) (*scorer.Summary, error) {
	var scores []float64
	for _, r := range records {
		if r.Score != nil {
			scores = append(scores, *r.Score)
		}
	}

	summary, err := scorer.Summarize(scores)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Rescore recomputes every record's score with the given metric, in place.
// Records without both an expected and a predicted answer keep a nil score.
func Rescore(records []*Record, metric scorer.Metric) (*scorer.Summary, error) {
	for _, r := range records {
		if r.Expected == "" {
			r.Score = nil
			continue
		}
		score := metric.Score(r.Expected, r.Predicted)
		r.Score = &score
	}
	return Summarize(records)
}
