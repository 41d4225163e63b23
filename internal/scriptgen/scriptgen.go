// Package scriptgen implements the scripting stage: prompt in, encoded
// storyboard plus description and subheadings out.
package scriptgen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"log/slog"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/embedding"
	"storyreel/internal/services/llm"
	"storyreel/internal/stage"
	"storyreel/internal/storyboard"
)

// maxDocumentBytes caps how much of a supporting document is fed to the
// prompt.
const maxDocumentBytes = 16 << 10

// Completer is the LLM surface the generator needs.
type Completer interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator produces the storyboard script and metadata for a job.
type Generator struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	client   Completer
	comparer embedding.Comparer
}

// New constructs the scripting stage handler using configured services.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Generator {
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	comparer := embedding.NewComparer(embedding.Config{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
	})
	return NewWithDependencies(cfg, store, logger, client, comparer)
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Completer, comparer embedding.Comparer) *Generator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "scriptgen"))
	}
	if comparer == nil {
		comparer = embedding.Local{}
	}
	return &Generator{cfg: cfg, store: store, logger: stageLogger, client: client, comparer: comparer}
}

// SetLogger swaps the stage logger for per-job session capture.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger.With(logging.String(logging.FieldComponent, "scriptgen"))
	}
}

func (g *Generator) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, g.logger)
	job.InitProgress("Scripting", "Preparing storyboard generation")
	logger.Info("starting script generation", logging.String("prompt", truncate(job.Prompt, 120)))
	return nil
}

func (g *Generator) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, g.logger)

	prompt := strings.TrimSpace(job.Prompt)
	if prompt == "" {
		return services.Wrap(services.ErrValidation, "scripting", "validate inputs", "job has no prompt text", nil)
	}

	document, err := g.loadDocument(job.DocumentPath)
	if err != nil {
		return err
	}

	g.updateProgress(ctx, job, "Generating storyboard", 10)
	raw, err := g.client.CompleteText(ctx, storyboardSystemPrompt, storyboardUserPrompt(prompt, document))
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "scripting", "generate storyboard", "storyboard completion failed", err)
	}

	board, err := storyboard.Decode(cleanWireOutput(raw))
	if err != nil {
		return err
	}
	job.StoryboardText = storyboard.Encode(board)
	logger.Info("storyboard generated", logging.Int("frames", len(board.Frames)))

	g.updateProgress(ctx, job, "Generating description", 60)
	description, err := g.client.CompleteText(ctx, descriptionSystemPrompt, descriptionUserPrompt(prompt, board))
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "scripting", "generate description", "description completion failed", err)
	}
	job.Description = strings.TrimSpace(description)

	g.updateProgress(ctx, job, "Generating subheadings", 80)
	subheadings, err := g.generateSubheadings(ctx, logger, prompt)
	if err != nil {
		return err
	}
	if err := job.SetSubheadings(subheadings); err != nil {
		return services.Wrap(services.ErrValidation, "scripting", "encode subheadings", "failed to encode subheadings", err)
	}

	job.SetProgressComplete("Scripting", fmt.Sprintf("Storyboard ready with %d frames", len(board.Frames)))
	logger.Info("script generation completed",
		logging.Int("frames", len(board.Frames)),
		logging.Int("subheadings", len(subheadings)),
	)
	return nil
}

// HealthCheck verifies the LLM connection settings are present.
func (g *Generator) HealthCheck(ctx context.Context) stage.Health {
	const name = "scriptgen"
	if g.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(g.cfg.LLM.APIKey) == "" {
		return stage.Unhealthy(name, "llm api key not configured")
	}
	if g.client == nil {
		return stage.Unhealthy(name, "llm client unavailable")
	}
	return stage.Healthy(name)
}

func (g *Generator) loadDocument(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "scripting", "read document", "supporting document unreadable", err)
	}
	if len(data) > maxDocumentBytes {
		data = data[:maxDocumentBytes]
	}
	return string(data), nil
}

func (g *Generator) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, g.logger)
	copy := *job
	copy.SetProgress("Scripting", message, percent)
	if err := g.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist scripting progress", logging.Error(err))
		return
	}
	*job = copy
}

// cleanWireOutput strips the decoration models wrap around the wire text:
// code fences, surrounding quotes, stray whitespace.
func cleanWireOutput(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.Index(cleaned, "\n"); idx >= 0 && !strings.ContainsAny(cleaned[:idx], storyboardDelimiters) {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	cleaned = strings.Trim(cleaned, "\"'")
	return strings.TrimSpace(cleaned)
}

const storyboardDelimiters = "?$"

func truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
