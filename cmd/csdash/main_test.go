package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-csdash/components/dashboard"
	"github.com/goliatone/go-csdash/pkg/config"
)

func TestDeriveMountID(t *testing.T) {
	if got := deriveMountID(" Total Revenue "); got != "totalRevenue" {
		t.Fatalf("expected totalRevenue, got %q", got)
	}
}

func TestAddMountCreatesPageAndRejectsDuplicates(t *testing.T) {
	doc := &dashboard.PageManifestDocument{Version: "1"}
	mount := dashboard.Mount{ID: "revenue", Kind: dashboard.MountKPI, Title: "Revenue"}
	if err := addMount(doc, "sales", mount, false); err != nil {
		t.Fatalf("add mount: %v", err)
	}
	if len(doc.Pages) != 1 || doc.Pages[0].Name != "sales" || len(doc.Pages[0].Mounts) != 1 {
		t.Fatalf("unexpected manifest: %+v", doc.Pages)
	}
	if err := addMount(doc, "sales", mount, false); err == nil {
		t.Fatalf("expected duplicate mount error")
	}
	mount.Title = "Revenue (EUR)"
	if err := addMount(doc, "sales", mount, true); err != nil {
		t.Fatalf("overwrite mount: %v", err)
	}
	if got := doc.Pages[0].Mounts[0].Title; got != "Revenue (EUR)" {
		t.Fatalf("expected overwritten title, got %q", got)
	}
}

func TestAddMountCommandWritesManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages", "manifest.yaml")
	cmd := manifestAddMountCmd{
		Path:  path,
		Page:  "analytics",
		Kind:  string(dashboard.MountKPI),
		Title: "Total Customers",
		Set:   map[string]string{"metric": "total_customers"},
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	doc, err := dashboard.ReadManifest(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	def := doc.Pages[0]
	if def.Name != "analytics" || def.Mounts[0].ID != "totalCustomers" {
		t.Fatalf("unexpected page: %+v", def)
	}
	if def.Mounts[0].Config["metric"] != "total_customers" {
		t.Fatalf("expected metric config, got %+v", def.Mounts[0].Config)
	}
}

func TestAddMountCommandRejectsUnknownKind(t *testing.T) {
	cmd := manifestAddMountCmd{
		Path:  filepath.Join(t.TempDir(), "manifest.yaml"),
		Page:  "analytics",
		Kind:  "chart.pie",
		Title: "Pie",
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestManifestInitRoundTripsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := (&manifestInitCmd{Path: path}).Run(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := (&manifestInitCmd{Path: path}).Run(); err == nil {
		t.Fatalf("expected existing file error")
	}
	pages, err := dashboard.LoadPageSet(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var buf bytes.Buffer
	if err := writePages(&buf, pages); err != nil {
		t.Fatalf("write pages: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"analytics", "customer", string(dashboard.MountRecommendations)} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in listing:\n%s", want, out)
		}
	}
}

func TestNewAppWithMockBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Mock = true
	cfg.LogLevel = "error"
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	session, err := a.service.Open(context.Background(), dashboard.PageCustomer, dashboard.ViewerContext{UserID: "agent"}, dashboard.OpenParams{CustomerID: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	controller := dashboard.NewController(a.service, dashboard.ControllerOptions{BasePath: cfg.Server.BasePath})
	html, err := controller.RenderSession(session.ID())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, dashboard.MountIDRecommendations) {
		t.Fatalf("expected recommendations mount in page")
	}
}
