package scriptgen

import (
	"context"
	"strings"

	"log/slog"

	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/llm"
)

const (
	subheadingCount        = 3
	maxSubheadingAttempts  = 10
	maxSubheadingWords     = 10
	similarityThreshold    = 0.75
	avoidTopicsInstruction = "\n\nAvoid topics similar to: "
)

// generateSubheadings produces section subheadings that are semantically
// distinct from each other. Rejected candidates feed back into the prompt so
// the model steers away from them.
func (g *Generator) generateSubheadings(ctx context.Context, logger *slog.Logger, prompt string) ([]queue.Subheading, error) {
	subheadings := make([]queue.Subheading, 0, subheadingCount)
	used := make([]string, 0, subheadingCount)

	for len(subheadings) < subheadingCount {
		sub, ok, err := g.generateUniqueSubheading(ctx, logger, prompt, used)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("exhausted subheading attempts",
				logging.Int("generated", len(subheadings)),
				logging.Int("wanted", subheadingCount),
			)
			break
		}
		subheadings = append(subheadings, sub)
		used = append(used, sub.Heading)
	}
	return subheadings, nil
}

func (g *Generator) generateUniqueSubheading(ctx context.Context, logger *slog.Logger, prompt string, used []string) (queue.Subheading, bool, error) {
	userPrompt := subheadingUserPrompt(prompt)

	for attempt := 1; attempt <= maxSubheadingAttempts; attempt++ {
		raw, err := g.client.CompleteJSON(ctx, subheadingSystemPrompt, userPrompt)
		if err != nil {
			return queue.Subheading{}, false, services.Wrap(services.ErrExternalTool, "scripting", "generate subheading", "subheading completion failed", err)
		}

		var candidate queue.Subheading
		if err := llm.DecodeLLMJSON(raw, &candidate); err != nil {
			logger.Warn("subheading payload unparsable", logging.Int("attempt", attempt), logging.Error(err))
			continue
		}
		candidate.Heading = clampWords(strings.Trim(strings.TrimSpace(candidate.Heading), `"'`), maxSubheadingWords)
		candidate.Text = strings.TrimSpace(candidate.Text)
		if candidate.Heading == "" {
			continue
		}

		similarTo, score, err := g.mostSimilar(ctx, candidate.Heading, used)
		if err != nil {
			return queue.Subheading{}, false, services.Wrap(services.ErrExternalTool, "scripting", "compare subheading", "similarity check failed", err)
		}
		if similarTo != "" && score >= similarityThreshold {
			logger.Debug("subheading rejected as duplicate",
				logging.String("candidate", candidate.Heading),
				logging.String("similar_to", similarTo),
				logging.Float64("score", score),
			)
			userPrompt += avoidTopicsInstruction + similarTo
			continue
		}
		return candidate, true, nil
	}
	return queue.Subheading{}, false, nil
}

// mostSimilar returns the used heading with the highest similarity to the
// candidate, along with its score.
func (g *Generator) mostSimilar(ctx context.Context, candidate string, used []string) (string, float64, error) {
	var (
		best      string
		bestScore float64
	)
	for _, heading := range used {
		score, err := g.comparer.Similarity(ctx, candidate, heading)
		if err != nil {
			return "", 0, err
		}
		if score > bestScore {
			best = heading
			bestScore = score
		}
	}
	return best, bestScore, nil
}

func clampWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ")
}
