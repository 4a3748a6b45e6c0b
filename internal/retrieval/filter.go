package retrieval

import (
	"log/slog"
	"strings"
)

// NoContextSentinel replaces the assembled context when no candidate
// survives filtering, so the generator always receives a non-empty
// context argument.
const NoContextSentinel = "No relevant context found in the knowledge base."

// Similarity converts a dissimilarity distance into a similarity score.
func Similarity(distance float64) float64 {
	return 1 - distance
}

// Filter keeps candidates whose similarity reaches the threshold.
// Candidates without a distance are kept (fail-open): a missing score is
// not evidence of irrelevance.
type Filter struct {
	threshold float64
	logger    *slog.Logger
}

// NewFilter creates a filter with the configured similarity threshold.
func NewFilter(threshold float64, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{threshold: threshold, logger: logger}
}

// Apply filters candidates in input order, preserving that order.
func (f *Filter) Apply(chunks []Chunk) []Chunk {
	if len(chunks) == 0 {
		return nil
	}

	kept := make([]Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if !chunk.HasDistance {
			f.logger.Warn("candidate without distance, keeping by default", "source", chunk.Source)
			kept = append(kept, chunk)
			continue
		}
		score := Similarity(chunk.Distance)
		if score >= f.threshold {
			f.logger.Debug("candidate passed threshold",
				"source", chunk.Source, "similarity", score, "threshold", f.threshold)
			kept = append(kept, chunk)
		} else {
			f.logger.Debug("candidate below threshold",
				"source", chunk.Source, "similarity", score, "threshold", f.threshold)
		}
	}
	return kept
}

// BuildContext concatenates surviving chunk contents with a blank-line
// separator, or returns the sentinel when nothing survived.
func BuildContext(chunks []Chunk) string {
	if len(chunks) == 0 {
		return NoContextSentinel
	}
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}
