package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-csdash/components/dashboard"
)

type manifestCmd struct {
	Init     manifestInitCmd     `cmd:"" help:"Write the built-in pages to a manifest file."`
	AddMount manifestAddMountCmd `cmd:"" name:"add-mount" help:"Add a mount point to a page."`
}

type manifestInitCmd struct {
	Path      string `arg:"" type:"path" help:"Manifest file to create."`
	Overwrite bool   `help:"Replace an existing file."`
}

func (cmd *manifestInitCmd) Run() error {
	if !cmd.Overwrite {
		if _, err := os.Stat(cmd.Path); err == nil {
			return fmt.Errorf("csdash: %s already exists (use --overwrite)", cmd.Path)
		}
	}
	doc := &dashboard.PageManifestDocument{Version: "1", Pages: dashboard.DefaultPages()}
	return writeManifest(cmd.Path, doc)
}

type manifestAddMountCmd struct {
	Path      string            `arg:"" type:"path" help:"Manifest file to update (created when missing)."`
	Page      string            `required:"" help:"Page name; the page is created when absent."`
	Kind      string            `required:"" help:"Mount kind (e.g. chart.categories, widget.kpi)."`
	Title     string            `required:"" help:"Mount title."`
	ID        string            `help:"Mount id (defaults to the camel-cased title)."`
	Set       map[string]string `help:"Mount config entries (key=value)."`
	Overwrite bool              `help:"Replace a mount with the same id."`
}

func (cmd *manifestAddMountCmd) Run() error {
	kind := dashboard.MountKind(cmd.Kind)
	if !slices.Contains(dashboard.NewRegistry(nil, nil).Kinds(), kind) {
		return fmt.Errorf("csdash: unknown mount kind %q", cmd.Kind)
	}
	doc, err := loadOrInitManifest(cmd.Path)
	if err != nil {
		return err
	}
	mount := dashboard.Mount{
		ID:    cmd.ID,
		Kind:  kind,
		Title: cmd.Title,
	}
	if mount.ID == "" {
		mount.ID = deriveMountID(cmd.Title)
	}
	if len(cmd.Set) > 0 {
		mount.Config = make(map[string]any, len(cmd.Set))
		for key, value := range cmd.Set {
			mount.Config[key] = value
		}
	}
	if err := addMount(doc, cmd.Page, mount, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	return writeManifest(cmd.Path, doc)
}

func loadOrInitManifest(path string) (*dashboard.PageManifestDocument, error) {
	doc, err := dashboard.ReadManifest(path)
	if err == nil {
		return doc, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return &dashboard.PageManifestDocument{Version: "1"}, nil
	}
	return nil, err
}

func addMount(doc *dashboard.PageManifestDocument, page string, mount dashboard.Mount, overwrite bool) error {
	if mount.ID == "" {
		return errors.New("csdash: mount id is required")
	}
	idx := slices.IndexFunc(doc.Pages, func(def dashboard.PageDefinition) bool { return def.Name == page })
	if idx < 0 {
		doc.Pages = append(doc.Pages, dashboard.PageDefinition{Name: page, Title: page})
		idx = len(doc.Pages) - 1
	}
	def := &doc.Pages[idx]
	for i, existing := range def.Mounts {
		if existing.ID != mount.ID {
			continue
		}
		if !overwrite {
			return fmt.Errorf("csdash: page %s already has mount %s (use --overwrite)", page, mount.ID)
		}
		def.Mounts[i] = mount
		return nil
	}
	def.Mounts = append(def.Mounts, mount)
	return nil
}

func deriveMountID(title string) string {
	return strcase.ToCamel(strings.TrimSpace(title))
}

func writeManifest(path string, doc *dashboard.PageManifestDocument) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("csdash: create manifest dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csdash: write manifest: %w", err)
	}
	defer f.Close()
	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("csdash: encode manifest: %w", err)
	}
	return encoder.Close()
}
