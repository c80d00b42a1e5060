package web

import (
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetCatalog(c fiber.Ctx) error {
	return c.JSON(h.services.Action.Catalog())
}

func (h *APIHandlers) GetActionSchema(c fiber.Ctx) error {
	schema, err := h.services.Action.Schema(c.Params("actionId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(schema)
}

func (h *APIHandlers) GetNodeActions(c fiber.Ctx) error {
	actions, err := h.services.Action.ListForNode(c.Context(), c.Params("projectId"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(actions)
}

func (h *APIHandlers) ExpandGroup(c fiber.Ctx) error {
	actions, err := h.services.Action.ExpandGroup(c.Context(), c.Params("projectId"), c.Params("nodeId"), c.Params("groupId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(actions)
}

func (h *APIHandlers) GetActionHistory(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return badRequest(c, "Invalid query parameters: limit must be an integer")
	}

	history, err := h.services.Action.History(c.Context(), c.Params("projectId"), c.Params("nodeId"), limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(history)
}

// ExecuteAction returns 200 for failed executions too; the outcome is in
// the result status.
func (h *APIHandlers) ExecuteAction(c fiber.Ctx) error {
	var req ExecuteActionRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result, err := h.services.Action.Execute(c.Context(), c.Params("projectId"), c.Params("nodeId"), c.Params("actionId"), req.Params)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}
