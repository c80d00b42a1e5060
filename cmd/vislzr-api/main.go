package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dukex/vislzr/pkg/cmd"
	"github.com/dukex/vislzr/pkg/config"
	"github.com/dukex/vislzr/pkg/generator"
	"github.com/dukex/vislzr/pkg/handlers"
	"github.com/dukex/vislzr/pkg/log"
	"github.com/dukex/vislzr/pkg/notify"
	"github.com/dukex/vislzr/pkg/otelhelper"
	"github.com/dukex/vislzr/pkg/registry"
	"github.com/dukex/vislzr/pkg/scheduler"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPort   = 3001
	defaultWSPort = 3002
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
	}

	command := &cli.Command{
		Name:                  "vislzr-api",
		Usage:                 "Serve project graphs and their node actions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.IntFlag{
				Name:    "ws-port",
				Usage:   "Port of the WebSocket notification server, 0 disables it",
				Value:   defaultWSPort,
				Sources: cli.EnvVars("WS_PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL (file://, sqlite://, postgres://)",
				Value:   cmd.DefaultDatabaseURL,
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "history-url",
				Usage:   "Redis URL for action history, empty keeps history in the database",
				Sources: cli.EnvVars("HISTORY_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "genai-api-key",
				Usage:   "Gemini API key, empty uses the keyword graph generator",
				Sources: cli.EnvVars("GEMINI_API_KEY", "GOOGLE_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "genai-model",
				Usage:   "Gemini model name",
				Value:   generator.DefaultModel,
				Sources: cli.EnvVars("GEMINI_MODEL"),
			},
			&cli.StringFlag{
				Name:    "overdue-schedule",
				Usage:   "Cron expression of the overdue sweep, empty disables it",
				Sources: cli.EnvVars("OVERDUE_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "catalog-file",
				Usage:   "YAML file with extra actions and context rules",
				Sources: cli.EnvVars("CATALOG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: run,
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing vislzr API")

	tracer, err := newTracer(ctx, command.Bool("tracing"))
	if err != nil {
		return err
	}

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"), command.String("history-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	hub := notify.NewHub(logger)
	defer hub.Close()

	if err := hub.Attach(eventBus); err != nil {
		return err
	}

	if err := eventBus.Subscribe(ctx); err != nil {
		return err
	}

	if wsPort := command.Int("ws-port"); wsPort > 0 {
		server := startNotifyServer(ctx, logger, hub, wsPort)

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = server.Shutdown(shutdownCtx)
		}()
	}

	if schedule := command.String("overdue-schedule"); schedule != "" {
		sweeper, err := scheduler.NewOverdueSweeper(logger, persistence, eventBus, schedule)
		if err != nil {
			return err
		}

		if err := sweeper.Start(ctx); err != nil {
			return err
		}

		defer sweeper.Stop(ctx)
	}

	gen, err := newGenerator(ctx, logger, command.String("genai-api-key"), command.String("genai-model"))
	if err != nil {
		return err
	}

	reg, err := newRegistry(logger, command.String("catalog-file"))
	if err != nil {
		return err
	}

	api := NewAPI(logger, tracer, persistence, reg, gen, eventBus)

	if err := api.Start(command.Int("port")); err != nil {
		logger.ErrorContext(ctx, "Failed to start API server", "error", err)

		return err
	}

	return nil
}

// nolint:ireturn
func newTracer(ctx context.Context, enabled bool) (trace.Tracer, error) {
	if !enabled {
		return otelhelper.Noop(), nil
	}

	tracer, err := otelhelper.NewTracer(ctx, "vislzr-api")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	return tracer, nil
}

func newRegistry(logger *slog.Logger, catalogFile string) (*registry.Registry, error) {
	reg := registry.NewDefault(logger)

	if catalogFile == "" {
		return reg, nil
	}

	file, err := config.LoadCatalog(catalogFile)
	if err != nil {
		return nil, err
	}

	if err := file.Apply(reg, handlers.Defaults()); err != nil {
		return nil, fmt.Errorf("failed to apply catalog file %s: %w", catalogFile, err)
	}

	logger.Info("Loaded catalog file", "path", catalogFile, "actions", len(file.Actions), "rules", len(file.Rules))

	return reg, nil
}

// newGenerator uses Gemini when apiKey is set and the keyword graph otherwise.
func newGenerator(ctx context.Context, logger *slog.Logger, apiKey, model string) (*generator.Generator, error) {
	if apiKey == "" {
		logger.InfoContext(ctx, "No Gemini API key configured, graph generation uses keyword templates")

		return generator.New(logger, nil), nil
	}

	gemini, err := generator.NewGeminiModel(ctx, logger, apiKey, model)
	if err != nil {
		return nil, err
	}

	return generator.New(logger, gemini), nil
}

// startNotifyServer serves the notify hub on its own port since fiber does not
// speak net/http.
func startNotifyServer(ctx context.Context, logger *slog.Logger, hub *notify.Hub, port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "Starting WebSocket server", "port", port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "WebSocket server stopped", "error", err)
		}
	}()

	return server
}
