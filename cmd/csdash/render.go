package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-csdash/components/dashboard"
)

type renderCmd struct {
	Page       string `arg:"" help:"Page definition name (e.g. analytics, customer)."`
	CustomerID int    `name:"customer-id" help:"Customer shown on customer pages."`
	User       string `help:"Viewer user id, used for the theme preference."`
	Locale     string `help:"Viewer locale for localized titles."`
	Out        string `short:"o" type:"path" help:"Output file (default stdout)."`
}

func (cmd *renderCmd) Run(root *cli) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	viewer := dashboard.ViewerContext{UserID: cmd.User, Locale: cmd.Locale}
	session, err := a.service.Open(ctx, cmd.Page, viewer, dashboard.OpenParams{CustomerID: cmd.CustomerID})
	if err != nil {
		return err
	}
	controller := dashboard.NewController(a.service, dashboard.ControllerOptions{BasePath: cfg.Server.BasePath})

	out := os.Stdout
	if cmd.Out != "" {
		f, err := os.Create(cmd.Out)
		if err != nil {
			return fmt.Errorf("csdash: create %s: %w", cmd.Out, err)
		}
		defer f.Close()
		out = f
	}
	_, err = controller.RenderSession(session.ID(), out)
	return err
}
