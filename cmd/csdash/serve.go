package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-csdash/components/dashboard"
	"github.com/goliatone/go-csdash/components/dashboard/gorouter"
	"github.com/goliatone/go-csdash/components/dashboard/httpapi"
)

type serveCmd struct {
	Addr      string `help:"Listen address (overrides settings)."`
	Transport string `help:"HTTP stack: fiber (go-router) or mux (gorilla)."`
}

func (cmd *serveCmd) Run(root *cli) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.Transport != "" {
		cfg.Server.Transport = cmd.Transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	controller := dashboard.NewController(a.service, dashboard.ControllerOptions{BasePath: cfg.Server.BasePath})
	handlers := httpapi.NewHandlers(controller, a.telemetry)

	a.log.Info().
		Str("addr", cfg.Server.Addr).
		Str("transport", cfg.Server.Transport).
		Strs("pages", a.service.Pages().Names()).
		Msg("csdash listening")

	if cfg.Server.Transport == "mux" {
		return serveMux(ctx, a, handlers)
	}
	return serveFiber(a, handlers)
}

func serveFiber(a *app, handlers *httpapi.Handlers) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:    server.Router(),
		Service:   a.service,
		API:       handlers,
		Broadcast: a.broadcast,
		BasePath:  a.cfg.Server.BasePath,
	}); err != nil {
		return err
	}
	return server.Serve(a.cfg.Server.Addr)
}

func serveMux(ctx context.Context, a *app, handlers *httpapi.Handlers) error {
	srv := &http.Server{
		Addr: a.cfg.Server.Addr,
		Handler: httpapi.NewRouter(httpapi.RouterOptions{
			BasePath:       a.cfg.Server.BasePath,
			Handlers:       handlers,
			Broadcast:      a.broadcast,
			AccessLog:      os.Stdout,
			AllowedOrigins: a.cfg.Server.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
