package web

import (
	"errors"

	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/dukex/vislzr/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps service and persistence errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsProjectNotFound(err):
		return notFound(c, "project_not_found", "Project not found")

	case persistence.IsNodeNotFound(err):
		return notFound(c, "node_not_found", "Node not found")

	case persistence.IsEdgeNotFound(err):
		return notFound(c, "edge_not_found", "Edge not found")

	case persistence.IsMilestoneNotFound(err):
		return notFound(c, "milestone_not_found", "Milestone not found")

	case errors.Is(err, services.ErrActionNotFound):
		return notFound(c, "action_not_found", detail(err, "Action not found"))

	case services.IsForbidden(err):
		problem := problems.NewStatusProblem(403).
			WithInstance(c.Path()).
			WithType("action_not_available").
			WithDetail("Action not available for this node")

		return c.Status(fiber.StatusForbidden).JSON(problem)

	case services.IsValidationError(err):
		return badRequest(c, detail(err, err.Error()))

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		return internalError(c, err)
	}
}

// detail prefers the human readable message of a ServiceError.
func detail(err error, fallback string) string {
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) && serviceErr.Message != "" {
		return serviceErr.Message
	}

	return fallback
}
