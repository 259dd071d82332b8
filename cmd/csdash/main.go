// Command csdash serves the customer-service dashboard pages and offers
// offline helpers for rendering pages and editing page manifests.
package main

import (
	"context"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config  string   `short:"c" type:"path" help:"YAML settings file."`
	EnvFile []string `name:"env-file" help:"Dotenv files loaded before CSDASH_* overrides (default .env)."`

	Serve    serveCmd    `cmd:"" default:"1" help:"Serve dashboard pages over HTTP."`
	Render   renderCmd   `cmd:"" help:"Render one page to a static HTML file."`
	Pages    pagesCmd    `cmd:"" help:"List pages and their mount points."`
	Manifest manifestCmd `cmd:"" help:"Edit a page manifest."`
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("csdash"),
		kong.Description("Customer-service dashboard presentation server."),
		kong.UsageOnError(),
		kong.Bind(&root),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}
