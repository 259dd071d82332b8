package dashboard

import (
	"context"
	"testing"

	core "github.com/goliatone/go-csdash/components/dashboard"
	"github.com/goliatone/go-csdash/pkg/gateway"
)

func TestFacadeOpensPages(t *testing.T) {
	svc := NewService(Options{Gateway: gateway.NewMockClient()})
	defer svc.Shutdown()
	session, err := svc.Open(context.Background(), core.PageAnalytics, core.ViewerContext{}, core.OpenParams{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if session.Snapshot() == nil {
		t.Fatalf("expected mock analytics snapshot")
	}
}
