package ai

import "context"

// Generator sends a single prompt to a text-generation provider and
// returns the text of the first candidate.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
