package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goliatone/go-csdash/components/dashboard"
)

type pagesCmd struct {
	Manifest string `type:"path" help:"Manifest to list (defaults to the configured one)."`
}

func (cmd *pagesCmd) Run(root *cli) error {
	path := cmd.Manifest
	if path == "" {
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}
		path = cfg.Pages.ManifestPath
	}
	pages, err := dashboard.LoadPageSet(path)
	if err != nil {
		return err
	}
	return writePages(os.Stdout, pages)
}

func writePages(w io.Writer, pages *dashboard.PageSet) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tMOUNT\tKIND\tTITLE")
	for _, name := range pages.Names() {
		def, _ := pages.Lookup(name)
		for _, mount := range def.Mounts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", def.Name, mount.ID, mount.Kind, mount.Title)
		}
	}
	return tw.Flush()
}
