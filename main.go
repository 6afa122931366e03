package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dynamic360/partnercenter-bridge/internal/audit"
	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/dynamic360/partnercenter-bridge/internal/enhance"
	"github.com/dynamic360/partnercenter-bridge/internal/observe"
	"github.com/dynamic360/partnercenter-bridge/internal/partnercenter"
	"github.com/dynamic360/partnercenter-bridge/internal/server"
	"github.com/joho/godotenv"
	"github.com/justinas/alice"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// The request body size is fairly limited to prevent accidental or deliberate
// abuse. Given the current API shape, this is not configurable.
const requestLimitBytes = int64(64 << 10) // 64 KB

func configureServerRoutes(source partnerCenter, enhancer enhancer) http.Handler {
	// wrap a mux such that HTTP telemetry is configured by default
	muxWithoutTelemetry := http.NewServeMux()
	mux := observe.NewMux(muxWithoutTelemetry)

	requestLimiter := maxRequestSize(requestLimitBytes)

	standardRouteMiddleware := alice.New(requestLimiter)
	apiRouteMiddleware := alice.New(
		hlog.NewHandler(log.Logger),
		observe.Correlation(),
		audit.Middleware(),
		accessLog(),
		requestLimiter,
	)

	mux.Handle("POST /enhance/research", apiRouteMiddleware.Then(handleEnhanceResearch(enhancer)))
	mux.Handle("POST /enhance/specification", apiRouteMiddleware.Then(handleEnhanceSpecification(enhancer)))

	mux.Handle("GET /marketplace/intelligence", apiRouteMiddleware.Then(handleGet(func(r *http.Request) (*partnercenter.MarketplaceIntelligence, error) {
		return source.MarketplaceIntelligence(r.Context())
	})))
	mux.Handle("GET /marketplace/competitive/{category}", apiRouteMiddleware.Then(handleGet(func(r *http.Request) (*partnercenter.CompetitiveAnalysis, error) {
		return source.CompetitiveAnalysis(r.Context(), r.PathValue("category"))
	})))
	mux.Handle("GET /partner/requirements", apiRouteMiddleware.Then(handleGet(func(r *http.Request) (*partnercenter.PartnerProgramRequirements, error) {
		return source.PartnerProgramRequirements(r.Context())
	})))
	mux.Handle("POST /marketplace/compliance", apiRouteMiddleware.Then(handlePost(source.ValidateAppSourceCompliance)))
	mux.Handle("GET /ecosystem/updates", apiRouteMiddleware.Then(handleGet(func(r *http.Request) (*partnercenter.EcosystemUpdates, error) {
		return source.EcosystemUpdates(r.Context())
	})))
	mux.Handle("GET /pricing/benchmarks/{category}", apiRouteMiddleware.Then(handleGet(func(r *http.Request) (*partnercenter.PricingBenchmarks, error) {
		return source.PricingBenchmarks(r.Context(), r.PathValue("category"))
	})))
	mux.Handle("POST /revenue/projections", apiRouteMiddleware.Then(handlePost(source.RevenueProjections)))

	// healthchecks are not included in telemetry
	muxWithoutTelemetry.Handle("GET /healthcheck", standardRouteMiddleware.Then(handleHealthCheck()))

	return mux
}

func main() {
	configureLogging()

	logBuildInfo()

	err := launchServer()
	if err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

func launchServer() error {
	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	// configure telemetry, including wrapping default HTTP client
	shutdownTelemetry, err := observe.Configure(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}

	http.DefaultTransport = observe.HTTPTransport(
		configureHTTPTransport(cfg.Server),
		cfg.Observe,
	)
	http.DefaultClient = &http.Client{
		Transport: http.DefaultTransport,
	}

	client, tokens, err := partnercenter.Connect(ctx, cfg.PartnerCenter, cfg.Store, http.DefaultClient)
	if err != nil {
		return fmt.Errorf("partner center configuration failed: %w", err)
	}

	enhancer := enhance.New(client,
		enhance.WithCategory(client.Category()),
		enhance.WithDefaultMarketSize(cfg.Enhance.DefaultMarketSize),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           configureServerRoutes(client, enhancer),
		MaxHeaderBytes:    20 << 10,         // 20 KB
		ReadHeaderTimeout: 20 * time.Second, // Prevent Slowloris attacks
	}

	hooks := &server.Hooks{}
	hooks.AddCloser("credential-cache", tokens)
	hooks.Add("telemetry", shutdownTelemetry)

	err = server.Serve(ctx, srv, time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second, hooks)
	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// loadDotEnv reads a local .env file during development. A missing file is
// not an error.
func loadDotEnv() error {
	if os.Getenv("ENV") != "development" {
		return nil
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env load failed: %w", err)
	}

	return nil
}

func configureLogging() {
	// Set global level to the minimum: allows the Open Telemetry logging to be
	// configured separately. However, it means that any logger that sets its
	// level will log as this effectively disables the global level.
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Info()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}

func configureHTTPTransport(cfg config.ServerConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	return transport
}
