package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/vislzr/pkg/generator"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
)

type Generation struct {
	persistence persistence.Persistence
	generator   *generator.Generator
	logger      *slog.Logger
}

func NewGeneration(logger *slog.Logger, p persistence.Persistence, gen *generator.Generator) *Generation {
	return &Generation{
		persistence: p,
		generator:   gen,
		logger:      logger.With("module", "generation_service"),
	}
}

type GenerateResult struct {
	Graph    *models.Graph
	Fallback bool
}

// Generate drafts a graph for the project from prompt. Nothing is stored;
// the caller decides whether to PUT the result.
func (s *Generation) Generate(ctx context.Context, projectID, prompt string) (*GenerateResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, NewValidationError("GenerateGraph", "prompt_required", "Prompt is required", ErrPromptRequired)
	}

	project, err := s.persistence.ProjectRepository().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	generated := s.generator.Generate(ctx, projectID, prompt)
	generated.Graph.Project = project

	s.logger.InfoContext(ctx, "Graph generated",
		"project_id", projectID,
		"fallback", generated.Fallback,
		"nodes", len(generated.Graph.Nodes),
	)

	return &GenerateResult{Graph: generated.Graph, Fallback: generated.Fallback}, nil
}
