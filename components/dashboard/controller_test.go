package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerRenderSession(t *testing.T) {
	f := newServiceFixture()
	session, err := f.service.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)
	session.Notifications().Error("backend down")

	controller := NewController(f.service, ControllerOptions{BasePath: "csdash/"})
	var buf bytes.Buffer
	html, err := controller.RenderSession(session.ID(), &buf)
	require.NoError(t, err)
	assert.Equal(t, html, buf.String())

	data, ok := f.renderer.last(templatePage)
	require.True(t, ok)
	assert.Equal(t, "/csdash", data["base_path"])
	assert.Equal(t, "/csdash/assets", data["assets_base"])
	assert.Equal(t, session.ID(), data["session_id"])
	assert.Equal(t, "light", data["theme"])
	assert.Equal(t, "/csdash/sessions/"+session.ID(), data["session_url"])
	assert.Equal(t, FormatDate(session.LoadedAt(), true), data["updated_at"])
	scripts := data["chart_scripts"].([]string)
	require.NotEmpty(t, scripts)
	assert.True(t, strings.HasSuffix(scripts[0], "echarts.min.js"))

	notes := data["notifications"].([]map[string]any)
	require.Len(t, notes, 1)
	assert.Equal(t, "danger", notes[0]["kind"])

	mounts := data["mounts"].([]map[string]any)
	require.Len(t, mounts, len(session.Page().Mounts()))
	for _, m := range mounts {
		if m["id"] == MountIDCategories {
			assert.Contains(t, m["html"], "echarts")
			assert.NotContains(t, m["kind_class"], ".")
		}
	}
}

func TestControllerRenderSessionErrors(t *testing.T) {
	f := newServiceFixture()
	controller := NewController(f.service, ControllerOptions{})
	_, err := controller.RenderSession("nope")
	require.ErrorIs(t, err, ErrSessionNotFound)

	bare := NewService(Options{Gateway: f.gateway, Scheduler: f.sched})
	session, err := bare.Open(context.Background(), PageAnalytics, ViewerContext{}, OpenParams{})
	require.NoError(t, err)
	_, err = NewController(bare, ControllerOptions{}).RenderSession(session.ID())
	require.ErrorIs(t, err, errMissingRenderer)
}

func TestBootstrapRejectsInvalidManifestPage(t *testing.T) {
	_, err := Bootstrap(BootstrapOptions{Options: Options{
		Renderer: &recordingRenderer{},
		Pages:    NewPageSet(PageDefinition{Name: "broken", Mounts: []Mount{{ID: "r", Kind: MountRecommendations, Config: map[string]any{"limit": 0}}}}),
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page broken")
}

func TestBootstrapDefaults(t *testing.T) {
	svc, err := Bootstrap(BootstrapOptions{Options: Options{Renderer: &recordingRenderer{}}})
	require.NoError(t, err)
	assert.Equal(t, []string{PageAnalytics, PageCustomer}, svc.Pages().Names())
}
