package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/boddenberg/crm-desk-go/internal/cli"
	"github.com/boddenberg/crm-desk-go/internal/config"
	"github.com/boddenberg/crm-desk-go/internal/infra/api"
	"github.com/boddenberg/crm-desk-go/internal/infra/kvstore"
	"github.com/boddenberg/crm-desk-go/internal/infra/observability"
	"github.com/boddenberg/crm-desk-go/internal/infra/resilience"
	"github.com/boddenberg/crm-desk-go/internal/infra/tokenstore"
	"github.com/boddenberg/crm-desk-go/internal/port"
	"github.com/boddenberg/crm-desk-go/internal/search"
	"github.com/boddenberg/crm-desk-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Debug("configuration loaded",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("session_file", cfg.SessionFile),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("error_ttl", cfg.ErrorTTL),
		zap.Duration("search_debounce", cfg.SearchDebounce),
		zap.Int("page_size", cfg.PageSize),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "crmdesk")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()
	if cfg.MetricsAddr != "" {
		observability.StartDebugServer(cfg.MetricsAddr, metrics, logger)
	}

	// --- Session persistence ---
	kv, err := kvstore.Open(cfg.SessionFile)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	tokens := tokenstore.New(kv, logger)

	// --- HTTP client with bearer handling ---
	transport := api.NewAuthTransport(nil, tokens, logger, metrics)
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.HTTPTimeout,
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}
	cb := resilience.NewCircuitBreaker("crm-backend")

	// --- Gateways ---
	backend := api.NewBackend(httpClient, cfg.APIBaseURL, cb, resilienceCfg, logger, metrics)
	authGateway := api.NewAuthClient(backend)
	customerGateway := api.NewCustomerClient(backend)
	contactGateway := api.NewContactClient(backend)
	noteGateway := api.NewNoteClient(backend)

	// --- Services ---
	navigator := port.NavigatorFunc(func(route string) {
		logger.Debug("navigate", zap.String("route", route))
	})

	session := service.NewSession(authGateway, tokens, navigator, logger)
	transport.BindSession(session)

	store := service.NewStore(customerGateway, contactGateway, noteGateway, cfg.ErrorTTL, metrics, logger)
	customers := service.NewCustomerService(customerGateway, store, logger)
	contacts := service.NewContactService(contactGateway, store, logger)
	notes := service.NewNoteService(noteGateway, store, logger)

	// --- Command tree ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coordinator := search.NewCoordinator(ctx, store, cfg.SearchDebounce, cfg.PageSize, logger)

	root := cli.NewRoot(&cli.Deps{
		Config:      cfg,
		Logger:      logger,
		Session:     session,
		Store:       store,
		Customers:   customers,
		Contacts:    contacts,
		Notes:       notes,
		Coordinator: coordinator,
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
