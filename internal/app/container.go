package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/graph"
	"github.com/nfrund/relay/internal/pubsub"
	"github.com/nfrund/relay/internal/relay"
	"github.com/nfrund/relay/internal/topicmgr"
	"github.com/nfrund/relay/internal/transport"
)

// Tracing holds the tracer used by the event bus and the function that
// flushes and stops it.
type Tracing struct {
	Tracer  trace.Tracer
	Cleanup func()
}

// New builds the dependency container for cfg. Services are created lazily on
// first invocation and are singletons within the container.
func New(cfg config.Provider) do.Injector {
	i := do.New()

	do.ProvideValue(i, cfg)
	do.ProvideValue(i, relay.Clock(time.Now))

	do.Provide(i, provideTracing)
	do.Provide(i, provideBus)
	do.Provide(i, func(do.Injector) (*topicmgr.Manager, error) {
		return topicmgr.NewManager(), nil
	})
	do.Provide(i, func(do.Injector) (*pubsub.Registry, error) {
		return pubsub.NewRegistry(), nil
	})
	do.Provide(i, func(do.Injector) (*relay.Counter, error) {
		return relay.NewCounter(), nil
	})
	do.Provide(i, provideChannels)
	do.Provide(i, provideCommands)
	do.Provide(i, provideState)
	do.Provide(i, provideGenerators)
	do.Provide(i, provideGraph)
	do.Provide(i, provideTransport)

	return i
}

func provideTracing(i do.Injector) (*Tracing, error) {
	cfg := do.MustInvoke[config.Provider](i)

	tracingCfg := pubsub.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.GetTracingEnabled()
	tracingCfg.ServiceName = cfg.GetTracingServiceName()
	tracingCfg.ZipkinURL = cfg.GetZipkinURL()

	tracer, cleanup, err := pubsub.SetupOTel(context.Background(), tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	return &Tracing{Tracer: tracer, Cleanup: cleanup}, nil
}

func provideBus(i do.Injector) (*pubsub.WatermillBridge, error) {
	tracing := do.MustInvoke[*Tracing](i)

	var tracer trace.Tracer
	if do.MustInvoke[config.Provider](i).GetTracingEnabled() {
		tracer = tracing.Tracer
	}
	return pubsub.NewWatermillBridge(pubsub.BusConfig{OutputBuffer: 64}, tracer), nil
}

func provideChannels(i do.Injector) (*relay.Channels, error) {
	opts := pubsub.ChannelOptions{
		Topics: do.MustInvoke[*topicmgr.Manager](i),
	}
	if do.MustInvoke[config.Provider](i).GetBusMirror() {
		opts.Mirror = do.MustInvoke[*pubsub.WatermillBridge](i)
	}
	return relay.NewChannels(do.MustInvoke[*pubsub.Registry](i), opts)
}

func provideCommands(i do.Injector) (*relay.Commands, error) {
	cfg := do.MustInvoke[config.Provider](i)
	return relay.NewCommands(
		do.MustInvoke[*relay.Channels](i),
		do.MustInvoke[*relay.Counter](i),
		do.MustInvoke[relay.Clock](i),
		relay.CommandsConfig{PassThrough: cfg.GetPassThroughArgs()},
	), nil
}

func provideState(i do.Injector) (*relay.State, error) {
	cfg := do.MustInvoke[config.Provider](i)
	return relay.NewState(cfg.GetHistoryLimit(), do.MustInvoke[relay.Clock](i)), nil
}

func provideGenerators(i do.Injector) (*relay.Generators, error) {
	cfg := do.MustInvoke[config.Provider](i)
	return relay.NewGenerators(
		do.MustInvoke[*relay.Channels](i),
		do.MustInvoke[*relay.Counter](i),
		do.MustInvoke[relay.Clock](i),
		nil,
		relay.GeneratorsConfig{
			MessageInterval:  cfg.GetMessageInterval(),
			StatusInterval:   cfg.GetStatusInterval(),
			SettingsInterval: cfg.GetSettingsInterval(),
		},
	), nil
}

func provideGraph(i do.Injector) (*graph.Service, error) {
	return graph.NewService(
		do.MustInvoke[*relay.Commands](i),
		do.MustInvoke[*relay.Channels](i),
		do.MustInvoke[*relay.State](i),
	)
}

func provideTransport(i do.Injector) (*transport.Handler, error) {
	cfg := do.MustInvoke[config.Provider](i)
	tcfg := transport.DefaultConfig()
	tcfg.InitTimeout = cfg.GetInitTimeout()
	tcfg.KeepAlive = cfg.GetKeepAlive()
	return transport.NewHandler(do.MustInvoke[*graph.Service](i), tcfg), nil
}
