package web

import (
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetNodes(c fiber.Ctx) error {
	nodes, err := h.services.Node.List(c.Context(), c.Params("projectId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if nodes == nil {
		nodes = []*models.Node{}
	}

	return c.JSON(nodes)
}

func (h *APIHandlers) CreateNode(c fiber.Ctx) error {
	var req CreateNodeRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	node, err := h.services.Node.Create(c.Context(), c.Params("projectId"), req.input())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) GetNode(c fiber.Ctx) error {
	node, err := h.services.Node.Get(c.Context(), c.Params("projectId"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	node, err := h.services.Node.Update(c.Context(), c.Params("projectId"), c.Params("nodeId"), req.input())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	if err := h.services.Node.Delete(c.Context(), c.Params("projectId"), c.Params("nodeId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetEdges(c fiber.Ctx) error {
	edges, err := h.services.Edge.List(c.Context(), c.Params("projectId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if edges == nil {
		edges = []*models.Edge{}
	}

	return c.JSON(edges)
}

func (h *APIHandlers) CreateEdge(c fiber.Ctx) error {
	var req CreateEdgeRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	edge, err := h.services.Edge.Create(c.Context(), c.Params("projectId"), services.CreateEdgeInput{
		ID:       req.ID,
		Source:   req.Source,
		Target:   req.Target,
		Type:     req.Type,
		Status:   req.Status,
		Metadata: req.Metadata,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (h *APIHandlers) GetEdge(c fiber.Ctx) error {
	edge, err := h.services.Edge.Get(c.Context(), c.Params("projectId"), c.Params("edgeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(edge)
}

func (h *APIHandlers) DeleteEdge(c fiber.Ctx) error {
	if err := h.services.Edge.Delete(c.Context(), c.Params("projectId"), c.Params("edgeId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetMilestones(c fiber.Ctx) error {
	milestones, err := h.services.Milestone.List(c.Context(), c.Params("projectId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	if milestones == nil {
		milestones = []*models.Milestone{}
	}

	return c.JSON(milestones)
}

func (h *APIHandlers) CreateMilestone(c fiber.Ctx) error {
	var req CreateMilestoneRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	milestone, err := h.services.Milestone.Create(c.Context(), c.Params("projectId"), services.CreateMilestoneInput{
		ID:          req.ID,
		Title:       req.Title,
		Date:        req.Date,
		Status:      req.Status,
		Description: req.Description,
		LinkedNodes: req.LinkedNodes,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(milestone)
}

func (h *APIHandlers) GetMilestone(c fiber.Ctx) error {
	milestone, err := h.services.Milestone.Get(c.Context(), c.Params("projectId"), c.Params("milestoneId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(milestone)
}

func (h *APIHandlers) UpdateMilestone(c fiber.Ctx) error {
	var req UpdateMilestoneRequest
	if msg, ok := h.bind(c, &req); !ok {
		return badRequest(c, msg)
	}

	milestone, err := h.services.Milestone.Update(c.Context(), c.Params("projectId"), c.Params("milestoneId"), services.UpdateMilestoneInput{
		Title:       req.Title,
		Date:        req.Date,
		Status:      req.Status,
		Description: req.Description,
		LinkedNodes: req.LinkedNodes,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(milestone)
}

func (h *APIHandlers) DeleteMilestone(c fiber.Ctx) error {
	if err := h.services.Milestone.Delete(c.Context(), c.Params("projectId"), c.Params("milestoneId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
