package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-csdash/components/dashboard"
	"github.com/goliatone/go-csdash/components/dashboard/redisprefs"
	"github.com/goliatone/go-csdash/pkg/activity"
	"github.com/goliatone/go-csdash/pkg/config"
	"github.com/goliatone/go-csdash/pkg/gateway"
	"github.com/goliatone/go-csdash/pkg/logging"
)

// app holds everything built from the settings.
type app struct {
	cfg       config.Config
	log       zerolog.Logger
	service   *dashboard.Service
	broadcast *dashboard.BroadcastHook
	telemetry dashboard.LogTelemetry
	closers   []func() error
}

func (a *app) Close() {
	a.service.Shutdown()
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.log.Warn().Err(err).Msg("shutdown")
		}
	}
}

func loadConfig(root *cli) (config.Config, error) {
	return config.Load(root.Config, root.EnvFile...)
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log := logging.New(logging.Options{
		Service:     cfg.ServiceName,
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	a := &app{
		cfg:       cfg,
		log:       log,
		broadcast: dashboard.NewBroadcastHook(),
		telemetry: dashboard.LogTelemetry{Logger: log},
	}

	gw, err := newGateway(cfg, &log)
	if err != nil {
		return nil, err
	}

	var prefs dashboard.PreferenceStore
	if cfg.Redis.Addr != "" {
		store, client, err := redisprefs.NewFromAddr(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisprefs.Options{Prefix: cfg.Redis.Prefix})
		if err != nil {
			return nil, err
		}
		prefs = store
		a.closers = append(a.closers, client.Close)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("theme preferences stored in redis")
	}

	assetsHost := cfg.Charts.AssetsHost
	if assetsHost == "" {
		assetsHost = dashboard.DefaultEChartsAssetsHost()
	}
	charts := dashboard.NewChartAdapter(
		dashboard.WithChartAssetsHost(assetsHost),
		dashboard.WithChartCache(dashboard.NewChartCache(cfg.Charts.CacheTTL)),
	)

	service, err := dashboard.Bootstrap(dashboard.BootstrapOptions{
		Options: dashboard.Options{
			Gateway:              gw,
			PreferenceStore:      prefs,
			Charts:               charts,
			EventHook:            a.broadcast,
			Telemetry:            a.telemetry,
			ActivityHooks:        activity.Hooks{activity.LogHook{Logger: log}},
			ActivityConfig:       activity.Config{Enabled: true},
			Logger:               &log,
			ReloadDelay:          cfg.UI.ReloadDelay,
			NotificationDuration: cfg.UI.NotificationDuration,
		},
		ManifestPath: cfg.Pages.ManifestPath,
	})
	if err != nil {
		return nil, fmt.Errorf("csdash: bootstrap: %w", err)
	}
	a.service = service
	return a, nil
}

func newGateway(cfg config.Config, log *zerolog.Logger) (dashboard.Gateway, error) {
	if cfg.Backend.Mock {
		log.Warn().Msg("using in-memory mock backend")
		return gateway.NewMockClient(), nil
	}
	client, err := gateway.NewHTTPClient(gateway.HTTPConfig{
		BaseURL: cfg.Backend.BaseURL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
		Breaker: cfg.Backend.Breaker,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
