package dashboard

import (
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/opts"
)

// envEChartsCDN overrides where the ECharts runtime is loaded from (a CDN or self-hosted bucket).
const envEChartsCDN = "CSDASH_ECHARTS_CDN"

// DefaultEChartsHost is the go-echarts assets host used when none is configured.
const DefaultEChartsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// DefaultEChartsAssetsHost returns the assets host set in CSDASH_ECHARTS_CDN.
// An empty result keeps the go-echarts default host.
func DefaultEChartsAssetsHost() string {
	host := strings.TrimSpace(os.Getenv(envEChartsCDN))
	if host == "" {
		return ""
	}
	return ensureTrailingSlash(host)
}

// EChartsScripts returns the runtime script URL and, for themes not built
// into the runtime, the theme script URL.
func EChartsScripts(host, theme string) []string {
	host = ensureTrailingSlash(strings.TrimSpace(host))
	if host == "" {
		host = DefaultEChartsHost
	}
	scripts := []string{host + opts.EchartsJS}
	if theme != "" && theme != "white" && theme != "dark" {
		scripts = append(scripts, host+"themes/"+theme+".js")
	}
	return scripts
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
