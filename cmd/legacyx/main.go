package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/hliosone/legacyx/internal/config"
	"github.com/hliosone/legacyx/internal/infra/database"
	"github.com/hliosone/legacyx/internal/infra/gateway"
	"github.com/hliosone/legacyx/internal/infra/repository"
	"github.com/hliosone/legacyx/internal/present/rest"
	"github.com/hliosone/legacyx/internal/service"
	"github.com/hliosone/legacyx/internal/usecase"
)

func main() {
	configPath := os.Getenv("LEGACYX_CONFIG")
	if configPath == "" {
		configPath = "/etc/legacyx/config.yaml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown(ctx)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	provider := gateway.NewSigningProviderGateway(conf.Provider.URL, conf.Provider.APIKey)
	backend := gateway.NewBackendGateway(conf.Backend.URL, mc)
	history := repository.NewHistoryRepository(db)
	signal := service.NewSignalService(rdb)

	sessionUC := usecase.NewSessionUsecase(provider)
	if err := sessionUC.Start(ctx); err != nil {
		slog.Error("failed to start wallet session", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sessionUC.Close()

	signingUC := usecase.NewSigningUsecase(provider, history, signal)
	feeUC := usecase.NewFeeUsecase(backend, signingUC, conf.Flows)
	escrowUC := usecase.NewEscrowUsecase(backend, signingUC, conf.Flows)
	credentialUC := usecase.NewCredentialUsecase(backend, signingUC)
	contractUC := usecase.NewContractUsecase(backend, history)
	certificateUC := usecase.NewCertificateUsecase(backend, signingUC)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("legacyx"))
	}

	handler := rest.NewHandler(conf.Flows, sessionUC, feeUC, escrowUC, credentialUC, contractUC, certificateUC, signal)
	defer handler.Close()
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTracer(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
