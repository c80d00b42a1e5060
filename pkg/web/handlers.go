// Package web provides the HTTP handlers of the project graph API.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/vislzr/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type Services struct {
	Project    *services.Project
	Graph      *services.Graph
	Node       *services.Node
	Edge       *services.Edge
	Milestone  *services.Milestone
	Action     *services.Action
	Generation *services.Generation
}

type APIHandlers struct {
	services  Services
	validator *validator.Validate
}

func NewAPIHandlers(svc Services, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		services:  svc,
		validator: validator,
	}
}

// Register mounts every API route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)

	router.Get("/actions", h.GetCatalog)
	router.Get("/actions/:actionId/schema", h.GetActionSchema)

	p := router.Group("/projects")
	p.Get("/", h.GetProjects)
	p.Post("/", h.CreateProject)
	p.Get("/:projectId", h.GetProject)
	p.Patch("/:projectId", h.UpdateProject)
	p.Delete("/:projectId", h.DeleteProject)

	p.Get("/:projectId/graph", h.GetGraph)
	p.Put("/:projectId/graph", h.ReplaceGraph)
	p.Post("/:projectId/ai/generate", h.GenerateGraph)

	p.Get("/:projectId/nodes", h.GetNodes)
	p.Post("/:projectId/nodes", h.CreateNode)
	p.Get("/:projectId/nodes/:nodeId", h.GetNode)
	p.Patch("/:projectId/nodes/:nodeId", h.UpdateNode)
	p.Delete("/:projectId/nodes/:nodeId", h.DeleteNode)

	// Static segments are registered before :actionId so they win.
	p.Get("/:projectId/nodes/:nodeId/actions", h.GetNodeActions)
	p.Get("/:projectId/nodes/:nodeId/actions/history", h.GetActionHistory)
	p.Get("/:projectId/nodes/:nodeId/actions/:groupId/expand", h.ExpandGroup)
	p.Post("/:projectId/nodes/:nodeId/actions/:actionId", h.ExecuteAction)

	p.Get("/:projectId/edges", h.GetEdges)
	p.Post("/:projectId/edges", h.CreateEdge)
	p.Get("/:projectId/edges/:edgeId", h.GetEdge)
	p.Delete("/:projectId/edges/:edgeId", h.DeleteEdge)

	p.Get("/:projectId/milestones", h.GetMilestones)
	p.Post("/:projectId/milestones", h.CreateMilestone)
	p.Get("/:projectId/milestones/:milestoneId", h.GetMilestone)
	p.Patch("/:projectId/milestones/:milestoneId", h.UpdateMilestone)
	p.Delete("/:projectId/milestones/:milestoneId", h.DeleteMilestone)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.services.Project.HealthCheck(c.Context())

	status := "unhealthy"
	message := "vislzr API is unhealthy"
	httpStatus := http.StatusServiceUnavailable

	if ok {
		status = "healthy"
		message = "vislzr API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// bind decodes the JSON body into req and runs its validation tags.
func (h *APIHandlers) bind(c fiber.Ctx, req any) (string, bool) {
	if err := c.Bind().JSON(req); err != nil {
		return "Invalid JSON format", false
	}

	if err := h.validator.Struct(req); err != nil {
		return err.Error(), false
	}

	return "", true
}

func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}

	return strconv.Atoi(raw)
}
