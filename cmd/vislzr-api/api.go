// Package main provides the vislzr API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/executor"
	"github.com/dukex/vislzr/pkg/generator"
	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/dukex/vislzr/pkg/registry"
	"github.com/dukex/vislzr/pkg/services"
	"github.com/dukex/vislzr/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	tracer      trace.Tracer
	persistence persistence.Persistence
	registry    *registry.Registry
	generator   *generator.Generator
	publisher   eventbus.EventPublisher
	validate    *validator.Validate
}

// NewAPI wires the services over persistence. publisher may be nil.
func NewAPI(
	logger *slog.Logger,
	tracer trace.Tracer,
	persistence persistence.Persistence,
	registry *registry.Registry,
	generator *generator.Generator,
	publisher eventbus.EventPublisher,
) *API {
	return &API{
		logger:      logger,
		tracer:      tracer,
		persistence: persistence,
		registry:    registry,
		generator:   generator,
		publisher:   publisher,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) services() web.Services {
	exec := executor.New(a.logger, a.tracer, handlers.Defaults())

	return web.Services{
		Project:    services.NewProject(a.logger, a.persistence, a.publisher),
		Graph:      services.NewGraph(a.logger, a.persistence, a.publisher),
		Node:       services.NewNode(a.logger, a.persistence, a.publisher),
		Edge:       services.NewEdge(a.logger, a.persistence, a.publisher),
		Milestone:  services.NewMilestone(a.logger, a.persistence, a.publisher),
		Action:     services.NewAction(a.logger, a.tracer, a.persistence, a.registry, exec, a.publisher),
		Generation: services.NewGeneration(a.logger, a.persistence, a.generator),
	}
}

func (a *API) App() *fiber.App {
	h := web.NewAPIHandlers(a.services(), a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("vislzr API")
	})

	h.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
