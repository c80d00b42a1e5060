package web

import (
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetProjects(c fiber.Ctx) error {
	projects, err := h.services.Project.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	if projects == nil {
		projects = []*models.Project{}
	}

	return c.JSON(projects)
}

func (h *APIHandlers) CreateProject(c fiber.Ctx) error {
	var req CreateProjectRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	project, err := h.services.Project.Create(c.Context(), services.CreateProjectInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(project)
}

func (h *APIHandlers) GetProject(c fiber.Ctx) error {
	project, err := h.services.Project.Get(c.Context(), c.Params("projectId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(project)
}

func (h *APIHandlers) UpdateProject(c fiber.Ctx) error {
	var req UpdateProjectRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	project, err := h.services.Project.Update(c.Context(), c.Params("projectId"), services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(project)
}

func (h *APIHandlers) DeleteProject(c fiber.Ctx) error {
	if err := h.services.Project.Delete(c.Context(), c.Params("projectId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetGraph(c fiber.Ctx) error {
	graph, err := h.services.Graph.Get(c.Context(), c.Params("projectId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) ReplaceGraph(c fiber.Ctx) error {
	var graph models.Graph
	if err := c.Bind().JSON(&graph); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	replaced, err := h.services.Graph.Replace(c.Context(), c.Params("projectId"), &graph)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(replaced)
}

func (h *APIHandlers) GenerateGraph(c fiber.Ctx) error {
	var req GenerateGraphRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	result, err := h.services.Generation.Generate(c.Context(), c.Params("projectId"), req.Prompt)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(GenerateGraphResponse{Graph: result.Graph, Fallback: result.Fallback})
}
