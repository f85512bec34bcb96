// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator wires every other component into one running
// gateway (C12): it brings components up in dependency order, keeps the
// unified catalog in step with the local registry and external manager via
// the notification bus, and drains in-flight work on shutdown within a
// configured grace period, following the teacher's cmd/vmcp/app/commands.go
// runServe startup sequence.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/vgate/pkg/conflict"
	"github.com/stacklok/vgate/pkg/discovery"
	"github.com/stacklok/vgate/pkg/external/client"
	"github.com/stacklok/vgate/pkg/external/manager"
	"github.com/stacklok/vgate/pkg/gwconfig"
	"github.com/stacklok/vgate/pkg/notify"
	"github.com/stacklok/vgate/pkg/protocol"
	"github.com/stacklok/vgate/pkg/registry"
	"github.com/stacklok/vgate/pkg/resolve"
	"github.com/stacklok/vgate/pkg/router"
	"github.com/stacklok/vgate/pkg/telemetry"
)

// Gateway owns every component instance for one running gateway process.
type Gateway struct {
	Config   *gwconfig.Config
	Bus      *notify.Bus
	Registry *registry.Registry
	Manager  *manager.Manager
	Resolver *resolve.Resolver
	Discover *discovery.Engine
	Router   *router.Router
	Surface  *protocol.Surface
	Telemetry *telemetry.Provider

	logger *slog.Logger
	server *http.Server
}

// New constructs every component from cfg but starts nothing yet.
func New(cfg *gwconfig.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	bus := notify.NewBus()
	reg := registry.New(cfg.CapabilityDirs, bus)
	mgr := manager.New(bus)
	resolver := resolve.New()

	llmOpts := []option.RequestOption{option.WithAPIKey(cfg.LLM.APIKey)}
	if cfg.LLM.BaseURL != "" {
		llmOpts = append(llmOpts, option.WithBaseURL(cfg.LLM.BaseURL))
	}

	var llmProvider router.LLMProvider
	if cfg.LLM.APIKey != "" {
		llmProvider = &router.OpenAIProvider{Client: oai.NewClient(llmOpts...)}
	}

	rtr := router.New(router.Options{LLMProvider: llmProvider})

	var selector *discovery.LLMSelector
	if llmProvider != nil {
		model := cfg.LLM.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		selector = &discovery.LLMSelector{Provider: llmProvider, Model: model}
	}

	var semantic *discovery.SemanticScorer
	if cfg.LLM.APIKey != "" {
		embedModel := cfg.LLM.EmbeddingModel
		if embedModel == "" {
			embedModel = "text-embedding-3-small"
		}
		embedder := &discovery.OpenAIEmbedder{
			Client: oai.NewClient(llmOpts...),
			Model:  embedModel,
		}

		var pool *pgxpool.Pool
		if cfg.Postgres.DSN != "" {
			p, err := pgxpool.New(context.Background(), cfg.Postgres.DSN)
			if err != nil {
				return nil, fmt.Errorf("connect postgres for tool embeddings: %w", err)
			}
			pool = p
		}
		semantic = discovery.NewSemanticScorer(embedder, pool)
	}

	engine := discovery.NewEngine(resolver, semantic, selector, cfg.Discovery.ToDiscoveryConfig())

	telProvider, err := telemetry.NewProvider(context.Background(), telemetry.Config{ServiceName: cfg.Name, PrometheusEnabled: true})
	if err != nil {
		return nil, fmt.Errorf("create telemetry provider: %w", err)
	}

	dispatcher := &protocol.Dispatcher{Resolver: resolver, Router: rtr, Manager: mgr, Discover: engine}
	surface := protocol.NewSurface(cfg.Name, "0.1.0", dispatcher, bus, logger)

	return &Gateway{
		Config:    cfg,
		Bus:       bus,
		Registry:  reg,
		Manager:   mgr,
		Resolver:  resolver,
		Discover:  engine,
		Router:    rtr,
		Surface:   surface,
		Telemetry: telProvider,
		logger:    logger,
	}, nil
}

// Run brings every component up in dependency order — registry, external
// manager, the first unified catalog merge, then transports — and blocks
// until ctx is cancelled, at which point it drains within
// cfg.ShutdownGrace before forcing a shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	if err := g.Registry.Load(); err != nil {
		return fmt.Errorf("load capability registry: %w", err)
	}
	g.logger.Info("capability registry loaded")

	specs := make([]client.ServerSpec, 0, len(g.Config.ExternalServers))
	for _, s := range g.Config.ExternalServers {
		specs = append(specs, s.ToServerSpec())
	}
	g.Manager.Start(ctx, specs)

	g.rebuildCatalog()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return g.Registry.Watch(gctx)
	})
	group.Go(func() error {
		g.watchCatalogSources(gctx)
		return nil
	})
	group.Go(func() error {
		return g.serveTransports(gctx)
	})

	return group.Wait()
}

// watchCatalogSources recomputes the unified catalog whenever the registry
// or the external manager signals a change, ignoring the CatalogDiff events
// this same recomputation publishes (notify.Bus has no per-channel
// unsubscribe, so the type assertion is the loop-prevention mechanism).
func (g *Gateway) watchCatalogSources(ctx context.Context) {
	sub := g.Bus.Subscribe()
	defer g.Bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if _, isDiff := ev.Payload.(conflict.CatalogDiff); isDiff {
				continue
			}
			g.rebuildCatalog()
		}
	}
}

func (g *Gateway) rebuildCatalog() {
	local := g.Registry.List(registry.Filter{IncludeHidden: true, IncludeDisabled: true})
	remoteCandidates := g.Manager.Candidates()

	remote := make([]conflict.RemoteCandidate, 0, len(remoteCandidates))
	for _, c := range remoteCandidates {
		remote = append(remote, conflict.RemoteCandidate{Server: c.Server, Tool: c.Tool, CandidateName: c.CandidateName})
	}

	prevSnap := g.Resolver.List()
	next := conflict.Resolve(local, remote, g.Config.ConflictPolicy)
	g.Resolver.Swap(next)

	prevByName := make(map[string]conflict.Entry, len(prevSnap))
	for _, e := range prevSnap {
		prevByName[e.Name] = e
	}
	diff := conflict.Diff(conflict.Result{ByName: prevByName}, next)
	if len(diff.Added) > 0 || len(diff.Removed) > 0 {
		g.Bus.Publish(notify.ChannelToolsListChanged, diff)
	}
}

// serveTransports mounts every configured HTTP-carried transport on one
// server and runs stdio inline when enabled, draining within
// Config.ShutdownGrace once ctx is cancelled.
func (g *Gateway) serveTransports(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	needsHTTP := g.Config.Transports.StreamableHTTP.Enabled || g.Config.Transports.HTTPSSE.Enabled || g.Config.Transports.WebSocket.Enabled
	if needsHTTP {
		var metrics http.Handler
		if g.Telemetry != nil {
			metrics = g.Telemetry.Handler()
		}
		mux := protocol.NewMux(g.Surface, protocol.MuxConfig{
			StreamableHTTP: g.Config.Transports.StreamableHTTP.Enabled,
			HTTPSSE:        g.Config.Transports.HTTPSSE.Enabled,
			Metrics:        metrics,
		})
		addr := firstNonEmpty(g.Config.Transports.StreamableHTTP.Addr, g.Config.Transports.HTTPSSE.Addr, g.Config.Transports.WebSocket.Addr)
		g.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

		group.Go(func() error {
			g.logger.Info("http transport listening", "addr", addr)
			if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	if g.Config.Transports.Stdio {
		group.Go(func() error {
			return protocol.ServeStdio(g.Surface)
		})
	}

	group.Go(func() error {
		<-gctx.Done()
		return g.shutdown()
	})

	return group.Wait()
}

func (g *Gateway) shutdown() error {
	grace := g.Config.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if g.server != nil {
		if err := g.server.Shutdown(shutdownCtx); err != nil {
			g.logger.Warn("forced transport shutdown", "error", err)
		}
	}
	if g.Telemetry != nil {
		if err := g.Telemetry.Shutdown(shutdownCtx); err != nil {
			g.logger.Warn("telemetry shutdown error", "error", err)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ":8080"
}
