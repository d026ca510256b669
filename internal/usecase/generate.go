package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const ApologyResponse = "I apologize, but I'm having trouble generating a response right now. Please try again later."

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationClient bounds a Generator call by a timeout and replaces every
// failure, including an empty completion, with ApologyResponse.
type GenerationClient struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

func NewGenerationClient(gen Generator, timeout time.Duration, logger *slog.Logger) (*GenerationClient, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if timeout <= 0 {
		return nil, errors.New("usecase: generation timeout must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationClient{gen: gen, timeout: timeout, logger: logger}, nil
}

type generation struct {
	text string
	err  error
}

// Generate always returns some text. The backend runs on its own goroutine so
// the deadline holds even if it ignores ctx.
func (g *GenerationClient) Generate(ctx context.Context, prompt string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		text, err := g.gen.Generate(ctx, prompt)
		done <- generation{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.ErrorContext(ctx, "generation timed out", "timeout", g.timeout, "err", ctx.Err())
		return ApologyResponse
	case res := <-done:
		if res.err != nil {
			g.logger.ErrorContext(ctx, "generation failed", "err", res.err)
			return ApologyResponse
		}
		if strings.TrimSpace(res.text) == "" {
			g.logger.WarnContext(ctx, "generation returned empty completion")
			return ApologyResponse
		}
		return res.text
	}
}
