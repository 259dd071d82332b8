package dashboard

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ThemeVariant is the light/dark choice persisted per viewer.
type ThemeVariant string

// Supported variants.
const (
	ThemeLight ThemeVariant = "light"
	ThemeDark  ThemeVariant = "dark"
)

// ParseThemeVariant normalizes a stored value, defaulting to light.
func ParseThemeVariant(value string) ThemeVariant {
	if strings.EqualFold(strings.TrimSpace(value), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the opposite variant.
func (v ThemeVariant) Toggle() ThemeVariant {
	if v == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// EChartsTheme maps the variant onto a bundled go-echarts theme.
func (v ThemeVariant) EChartsTheme() string {
	if v == ThemeDark {
		return types.ThemePurplePassion
	}
	return types.ThemeWesteros
}

// Canonical dashboard palette: dark blue, violet, purple, hover blue, deep purple, dark violet.
var (
	paletteFill = []string{
		"rgba(63, 81, 181, 0.7)",
		"rgba(103, 58, 183, 0.7)",
		"rgba(156, 39, 176, 0.7)",
		"rgba(83, 91, 242, 0.7)",
		"rgba(123, 31, 162, 0.7)",
		"rgba(74, 20, 140, 0.7)",
	}
	paletteBorder = []string{
		"rgba(63, 81, 181, 1)",
		"rgba(103, 58, 183, 1)",
		"rgba(156, 39, 176, 1)",
		"rgba(83, 91, 242, 1)",
		"rgba(123, 31, 162, 1)",
		"rgba(74, 20, 140, 1)",
	}
)

// Status colours shared by charts and widgets.
const (
	ColorSuccess = "rgba(76, 175, 80, 1)"
	ColorInfo    = "rgba(33, 150, 243, 1)"
	ColorWarning = "rgba(255, 152, 0, 1)"
	ColorDanger  = "rgba(244, 67, 54, 1)"

	colorSuccessFill = "rgba(76, 175, 80, 0.1)"
	colorInfoFill    = "rgba(33, 150, 243, 0.1)"
	colorInfoBar     = "rgba(33, 150, 243, 0.7)"
)

// ChartStyle is the visual configuration applied to a chart.
type ChartStyle struct {
	Colors          []string
	BorderColors    []string
	TextColor       string
	GridColor       string
	BackgroundColor string
	Width           string
	Height          string
	LegendPosition  string
	AreaColor       string
}

func baseChartStyle(variant ThemeVariant) ChartStyle {
	style := ChartStyle{
		Colors:         append([]string(nil), paletteFill...),
		BorderColors:   append([]string(nil), paletteBorder...),
		TextColor:      "rgba(33, 33, 33, 0.87)",
		GridColor:      "rgba(0, 0, 0, 0.1)",
		Width:          "100%",
		Height:         defaultChartHeight,
		LegendPosition: "top",
	}
	if variant == ThemeDark {
		style.TextColor = "rgba(255, 255, 255, 0.7)"
		style.GridColor = "rgba(255, 255, 255, 0.1)"
		style.BackgroundColor = "transparent"
	}
	return style
}

var kindStyles = map[ChartKind]ChartStyle{
	ChartCategories:       {LegendPosition: "right"},
	ChartInteractionTypes: {LegendPosition: "bottom"},
	ChartPreferences:      {Colors: []string{paletteFill[1]}, BorderColors: []string{paletteBorder[1]}},
	ChartCustomerTrends:   {Colors: []string{paletteBorder[0], ColorInfo}, AreaColor: colorInfoFill},
	ChartConversionRate:   {Colors: []string{ColorSuccess}, AreaColor: colorSuccessFill},
	ChartSatisfaction:     {Colors: []string{colorInfoBar}, BorderColors: []string{ColorInfo}},
}

// resolveChartStyle layers the per-kind style and caller overrides on top of
// the variant defaults. Zero-valued override fields keep the lower layer.
func resolveChartStyle(kind ChartKind, variant ThemeVariant, override *ChartStyle) (ChartStyle, error) {
	style := baseChartStyle(variant)
	if ks, ok := kindStyles[kind]; ok {
		if err := mergo.Merge(&style, ks, mergo.WithOverride); err != nil {
			return style, fmt.Errorf("dashboard: merge %s chart style: %w", kind, err)
		}
	}
	if override != nil {
		if err := mergo.Merge(&style, *override, mergo.WithOverride); err != nil {
			return style, fmt.Errorf("dashboard: merge %s style override: %w", kind, err)
		}
	}
	return style, nil
}

func (s ChartStyle) color(i int) string {
	if len(s.Colors) == 0 {
		return ""
	}
	return s.Colors[i%len(s.Colors)]
}

func (s ChartStyle) border(i int) string {
	if len(s.BorderColors) == 0 {
		return s.color(i)
	}
	return s.BorderColors[i%len(s.BorderColors)]
}
