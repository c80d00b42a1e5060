// Package generator turns a natural language prompt into a draft project graph.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dukex/vislzr/pkg/models"
	"google.golang.org/genai"
)

// Model completes a prompt. GeminiModel is the production implementation.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generated is a draft graph. It is never persisted by the generator.
type Generated struct {
	Graph *models.Graph
	// Fallback is set when the keyword graph was used instead of the model.
	Fallback bool
}

type Option func(*Generator)

// WithBackOff replaces the retry policy. Each call to newBackOff starts a
// fresh policy.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(g *Generator) {
		g.newBackOff = newBackOff
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

type Generator struct {
	model      Model
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

// New returns a generator. model may be nil, in which case every prompt gets
// the keyword graph.
func New(logger *slog.Logger, model Model, opts ...Option) *Generator {
	g := &Generator{
		model:      model,
		logger:     logger.With("module", "generator"),
		newBackOff: defaultBackOff,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.WithMaxRetries(b, 3)
}

// Generate asks the model for a graph and falls back to a keyword graph on any
// failure.
func (g *Generator) Generate(ctx context.Context, projectID, prompt string) Generated {
	now := g.now().UTC()

	if g.model == nil {
		return Generated{Graph: fallbackGraph(projectID, prompt, now), Fallback: true}
	}

	graph, err := g.fromModel(ctx, projectID, prompt, now)
	if err != nil {
		g.logger.WarnContext(ctx, "AI generation failed, using keyword graph", "project_id", projectID, "error", err)

		return Generated{Graph: fallbackGraph(projectID, prompt, now), Fallback: true}
	}

	g.logger.InfoContext(ctx, "AI graph generated", "project_id", projectID, "nodes", len(graph.Nodes), "edges", len(graph.Edges))

	return Generated{Graph: graph}
}

func (g *Generator) fromModel(ctx context.Context, projectID, prompt string, now time.Time) (*models.Graph, error) {
	var graph *models.Graph

	operation := func() error {
		text, err := g.model.Generate(ctx, prompt)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}

			g.logger.DebugContext(ctx, "Model call failed, retrying", "error", err)

			return err
		}

		parsed, err := parseGraph(text, projectID, now)
		if err != nil {
			return backoff.Permanent(err)
		}

		graph = parsed

		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(g.newBackOff(), ctx))
	if err != nil {
		return nil, err
	}

	return graph, nil
}

// retryable reports whether a model error is worth another attempt. Client
// errors other than rate limiting are final.
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
