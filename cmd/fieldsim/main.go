// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main contains the fieldsim command line tool that provisions,
// diagnoses and simulates the irrigation deployment.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/absmach/fieldsim"
	"github.com/absmach/fieldsim/cli"
	"github.com/absmach/fieldsim/diagnostics"
	diagapi "github.com/absmach/fieldsim/diagnostics/api"
	"github.com/absmach/fieldsim/internal"
	jaegerclient "github.com/absmach/fieldsim/internal/clients/jaeger"
	"github.com/absmach/fieldsim/internal/env"
	"github.com/absmach/fieldsim/internal/server"
	httpserver "github.com/absmach/fieldsim/internal/server/http"
	mglog "github.com/absmach/fieldsim/logger"
	fssdk "github.com/absmach/fieldsim/pkg/sdk/go"
	"github.com/absmach/fieldsim/pkg/uuid"
	"github.com/absmach/fieldsim/provision"
	provapi "github.com/absmach/fieldsim/provision/api"
	"github.com/absmach/fieldsim/simulator"
	simapi "github.com/absmach/fieldsim/simulator/api"
	"github.com/absmach/fieldsim/simulator/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	svcName       = "fieldsim"
	envFile       = ".env"
	envPrefixHTTP = "FIELDSIM_HTTP_"
)

type config struct {
	BackendURL      string        `env:"FIELDSIM_BACKEND_URL"      envDefault:"http://localhost:8080"`
	Username        string        `env:"FIELDSIM_USERNAME"         envDefault:"tenant@thingsboard.org"`
	Password        string        `env:"FIELDSIM_PASSWORD"         envDefault:"tenant"`
	TickInterval    time.Duration `env:"FIELDSIM_TICK_INTERVAL"    envDefault:"10s"`
	Iterations      uint64        `env:"FIELDSIM_ITERATIONS"       envDefault:"0"`
	Workers         int           `env:"FIELDSIM_WORKERS"          envDefault:"1"`
	RequestTimeout  time.Duration `env:"FIELDSIM_REQUEST_TIMEOUT"  envDefault:"10s"`
	TLSVerification bool          `env:"FIELDSIM_TLS_VERIFICATION" envDefault:"true"`
	LogLevel        string        `env:"FIELDSIM_LOG_LEVEL"        envDefault:"info"`
	JaegerURL       string        `env:"FIELDSIM_JAEGER_URL"       envDefault:""`
	TraceRatio      float64       `env:"FIELDSIM_TRACE_RATIO"      envDefault:"1.0"`
	InstanceID      string        `env:"FIELDSIM_INSTANCE_ID"      envDefault:""`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if err := fieldsim.LoadEnvFile(envFile); err != nil {
		log.Fatalf("failed to load %s env file: %s", envFile, err)
	}

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := mglog.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}

	var exitCode int
	defer mglog.ExitWithError(&exitCode)

	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = uuid.New().ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	httpServerConfig := server.Config{}
	if err := env.Parse(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err))
		exitCode = 1
		return
	}

	tracer := otel.Tracer(svcName)
	if cfg.JaegerURL != "" {
		tp, err := jaegerclient.NewProvider(ctx, svcName, cfg.JaegerURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to init Jaeger: %s", err))
			exitCode = 1
			return
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error(fmt.Sprintf("error shutting down tracer provider: %s", err))
			}
		}()
		tracer = tp.Tracer(svcName)
	}

	cli.SetLogger(logger)
	cli.SetMiddlewares(newMiddlewares(logger, tracer))

	rootCmd := newRootCmd(&cfg)

	var servers []server.Server
	if httpServerConfig.Port != "" {
		hs := httpserver.New(ctx, cancel, svcName, httpServerConfig, makeHandler(cfg.InstanceID), logger)
		servers = append(servers, hs)
		g.Go(func() error {
			return hs.Start()
		})
	}

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, servers...)
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		exitCode = 1
	}
	cancel()

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s terminated: %s", svcName, err))
	}
}

func newRootCmd(cfg *config) *cobra.Command {
	simCfg := simulator.Config{
		Interval:   cfg.TickInterval,
		Iterations: cfg.Iterations,
		Workers:    cfg.Workers,
	}

	rootCmd := &cobra.Command{
		Use:           svcName,
		Short:         "Smart irrigation provisioning, diagnostics and telemetry simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			sdkConf := fssdk.Config{
				BackendURL:      cfg.BackendURL,
				TLSVerification: cfg.TLSVerification,
				RequestTimeout:  cfg.RequestTimeout,
			}
			login := fssdk.Login{Username: cfg.Username, Password: cfg.Password}
			cli.SetSDK(fssdk.NewSDK(sdkConf), login)
		},
	}

	rootCmd.AddCommand(cli.NewProvisionCmd())
	rootCmd.AddCommand(cli.NewDiagnoseCmd())
	rootCmd.AddCommand(cli.NewSimulateCmd(&simCfg))
	rootCmd.AddCommand(cli.NewVersionCmd(cfg.InstanceID))

	// Root Flags
	rootCmd.PersistentFlags().StringVarP(
		&cfg.BackendURL,
		"backend-url",
		"b",
		cfg.BackendURL,
		"Backend URL",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cfg.Username,
		"username",
		"u",
		cfg.Username,
		"Backend login",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cfg.Password,
		"password",
		"p",
		cfg.Password,
		"Backend password",
	)

	rootCmd.PersistentFlags().DurationVarP(
		&cfg.RequestTimeout,
		"request-timeout",
		"t",
		cfg.RequestTimeout,
		"Timeout of a single backend request",
	)

	rootCmd.PersistentFlags().BoolVar(
		&cfg.TLSVerification,
		"tls-verification",
		cfg.TLSVerification,
		"Verify the backend TLS certificate",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&cli.RawOutput,
		"raw",
		"r",
		false,
		"Enables raw output mode for easier parsing of output",
	)

	return rootCmd
}

func newMiddlewares(logger mglog.Logger, tracer trace.Tracer) cli.Middlewares {
	return cli.Middlewares{
		Provision: func(svc provision.Service) provision.Service {
			svc = provapi.LoggingMiddleware(svc, logger)
			counter, latency := internal.MakeMetrics(svcName, "provision")
			return provapi.MetricsMiddleware(svc, counter, latency)
		},
		Diagnostics: func(svc diagnostics.Service) diagnostics.Service {
			svc = diagapi.LoggingMiddleware(svc, logger)
			counter, latency := internal.MakeMetrics(svcName, "diagnostics")
			return diagapi.MetricsMiddleware(svc, counter, latency)
		},
		Simulator: func(svc simulator.Service) simulator.Service {
			svc = tracing.New(svc, tracer)
			svc = simapi.LoggingMiddleware(svc, logger)
			counter, latency := internal.MakeMetrics(svcName, "simulator")
			sends := internal.MakeOutcomeCounter(svcName, "simulator")
			return simapi.MetricsMiddleware(svc, counter, latency, sends)
		},
	}
}

func makeHandler(instanceID string) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", fieldsim.Health(svcName, instanceID))
	r.Handle("/metrics", promhttp.Handler())

	return r
}
