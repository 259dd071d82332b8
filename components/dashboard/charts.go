package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/ettle/strcase"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

const defaultChartHeight = "360px"

// ChartKind names one of the dashboard's fixed chart initialisers.
type ChartKind string

// Chart kinds.
const (
	ChartCategories       ChartKind = "categories"
	ChartPreferences      ChartKind = "preferences"
	ChartInteractionTypes ChartKind = "interaction_types"
	ChartBestSellers      ChartKind = "best_sellers"
	ChartCustomerTrends   ChartKind = "customer_trends"
	ChartConversionRate   ChartKind = "conversion_rate"
	ChartSatisfaction     ChartKind = "satisfaction"
)

// Chart titles and series labels.
const (
	TitleCategories         = "Product Categories by Popularity"
	TitleInteractionTypes   = "Interaction Types Distribution"
	SeriesPreferenceLevel   = "Average Preference Level"
	SeriesNumberOfSales     = "Number of Sales"
	SeriesNewCustomers      = "New Customers"
	SeriesInteractions      = "Interactions"
	SeriesConversionRate    = "Conversion Rate (%)"
	SeriesAverageRating     = "Average Rating"
	satisfactionScaleMax    = 5
	preferenceScaleFallback = 5
)

// ChartAdapter renders the dashboard charts with go-echarts into page mounts.
// Every call replaces the chart on the target mount.
type ChartAdapter struct {
	cache      RenderCache
	assetsHost string
	styles     map[ChartKind]ChartStyle
}

// ChartAdapterOption customizes the adapter.
type ChartAdapterOption func(*ChartAdapter)

// WithChartCache injects a render cache. Nil disables caching.
func WithChartCache(cache RenderCache) ChartAdapterOption {
	return func(a *ChartAdapter) {
		a.cache = cache
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN or local path.
func WithChartAssetsHost(host string) ChartAdapterOption {
	return func(a *ChartAdapter) {
		a.assetsHost = host
	}
}

// WithChartStyle overrides style fields for one chart kind.
func WithChartStyle(kind ChartKind, style ChartStyle) ChartAdapterOption {
	return func(a *ChartAdapter) {
		a.styles[kind] = style
	}
}

// NewChartAdapter builds an adapter with a five minute render cache.
func NewChartAdapter(options ...ChartAdapterOption) *ChartAdapter {
	a := &ChartAdapter{
		cache:  NewChartCache(5 * time.Minute),
		styles: map[ChartKind]ChartStyle{},
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

type chartSeries struct {
	Name   string
	Values []float64
}

type chartRequest struct {
	kind    ChartKind
	mountID string
	title    string
	subtitle string
	labels   []string
	series   []chartSeries
}

// InitCategoriesChart draws the popular categories doughnut.
func (a *ChartAdapter) InitCategoriesChart(page *Page, mountID string, labels []string, counts []float64) error {
	return a.render(page, chartRequest{
		kind:    ChartCategories,
		mountID: mountID,
		title:   TitleCategories,
		labels:  labels,
		series:  []chartSeries{{Name: TitleCategories, Values: counts}},
	})
}

// InitPreferencesChart draws the preference radar.
func (a *ChartAdapter) InitPreferencesChart(page *Page, mountID string, labels []string, averages []float64) error {
	return a.render(page, chartRequest{
		kind:    ChartPreferences,
		mountID: mountID,
		labels:  labels,
		series:  []chartSeries{{Name: SeriesPreferenceLevel, Values: averages}},
	})
}

// InitInteractionTypesChart draws the interaction type pie.
func (a *ChartAdapter) InitInteractionTypesChart(page *Page, mountID string, labels []string, counts []float64) error {
	return a.render(page, chartRequest{
		kind:    ChartInteractionTypes,
		mountID: mountID,
		title:   TitleInteractionTypes,
		labels:  labels,
		series:  []chartSeries{{Name: TitleInteractionTypes, Values: counts}},
	})
}

// InitBestSellersChart draws the best sellers bar chart.
func (a *ChartAdapter) InitBestSellersChart(page *Page, mountID string, labels []string, counts []float64) error {
	return a.render(page, chartRequest{
		kind:    ChartBestSellers,
		mountID: mountID,
		labels:  labels,
		series:  []chartSeries{{Name: SeriesNumberOfSales, Values: counts}},
	})
}

// InitCustomerTrendsChart draws new customers and interactions as two smooth lines.
func (a *ChartAdapter) InitCustomerTrendsChart(page *Page, mountID string, labels []string, newCustomers, interactions []float64) error {
	return a.render(page, chartRequest{
		kind:    ChartCustomerTrends,
		mountID: mountID,
		labels:  periodLabels(labels),
		series: []chartSeries{
			{Name: SeriesNewCustomers, Values: newCustomers},
			{Name: SeriesInteractions, Values: interactions},
		},
	})
}

// InitConversionRateChart draws the filled conversion rate line. The subtitle
// carries the latest rate.
func (a *ChartAdapter) InitConversionRateChart(page *Page, mountID string, labels []string, rates []float64) error {
	req := chartRequest{
		kind:    ChartConversionRate,
		mountID: mountID,
		labels:  periodLabels(labels),
		series:  []chartSeries{{Name: SeriesConversionRate, Values: rates}},
	}
	if n := min(len(labels), len(rates)); n > 0 {
		req.subtitle = "Latest: " + FormatPercentage(rates[n-1])
	}
	return a.render(page, req)
}

// InitSatisfactionChart draws average ratings on a fixed 0..5 axis.
func (a *ChartAdapter) InitSatisfactionChart(page *Page, mountID string, labels []string, ratings []float64) error {
	return a.render(page, chartRequest{
		kind:    ChartSatisfaction,
		mountID: mountID,
		labels:  labels,
		series:  []chartSeries{{Name: SeriesAverageRating, Values: ratings}},
	})
}

func (a *ChartAdapter) render(page *Page, req chartRequest) error {
	if !page.Has(req.mountID) {
		return nil
	}
	for i := range req.series {
		req.series[i].Values = alignValues(req.labels, req.series[i].Values)
	}
	variant := page.Theme()
	var override *ChartStyle
	if s, ok := a.styles[req.kind]; ok {
		override = &s
	}
	style, err := resolveChartStyle(req.kind, variant, override)
	if err != nil {
		return err
	}
	theme := variant.EChartsTheme()

	renderFn := func() (string, error) {
		return a.build(req, style, theme)
	}

	var html string
	if a.cache != nil {
		key := ChartKey{
			Page:   page.Name(),
			Mount:  req.mountID,
			Theme:  theme,
			Digest: dataHash(req.kind, req.labels, req.series, style),
		}
		html, err = a.cache.GetOrRender(key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return fmt.Errorf("dashboard: render %s chart on %s: %w", req.kind, req.mountID, err)
	}

	page.Charts().Attach(req.mountID, req.kind, theme)
	page.Replace(req.mountID, html)
	return nil
}

func (a *ChartAdapter) build(req chartRequest, style ChartStyle, theme string) (string, error) {
	switch req.kind {
	case ChartCategories:
		return a.renderPie(req, style, theme, true)
	case ChartInteractionTypes:
		return a.renderPie(req, style, theme, false)
	case ChartPreferences:
		return a.renderRadar(req, style, theme)
	case ChartBestSellers, ChartSatisfaction:
		return a.renderBar(req, style, theme)
	case ChartCustomerTrends, ChartConversionRate:
		return a.renderLine(req, style, theme)
	default:
		return "", fmt.Errorf("unsupported chart kind: %s", req.kind)
	}
}

func (a *ChartAdapter) renderPie(req chartRequest, style ChartStyle, theme string, doughnut bool) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(a.globalOptions(req, style, theme, "item")...)
	values := req.series[0].Values
	data := make([]opts.PieData, len(req.labels))
	for i, label := range req.labels {
		data[i] = opts.PieData{
			Name:  label,
			Value: values[i],
			ItemStyle: &opts.ItemStyle{
				Color:       style.color(i),
				BorderColor: style.border(i),
			},
		}
	}
	var seriesOpts []charts.SeriesOpts
	if doughnut {
		seriesOpts = append(seriesOpts, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
	}
	pie.AddSeries(req.series[0].Name, data, seriesOpts...)
	return renderChart(pie)
}

func (a *ChartAdapter) renderRadar(req chartRequest, style ChartStyle, theme string) (string, error) {
	radar := charts.NewRadar()
	values := req.series[0].Values
	scale := float32(preferenceScaleFallback)
	for _, v := range values {
		if top := float32(math.Ceil(v)); top > scale {
			scale = top
		}
	}
	indicators := make([]*opts.Indicator, len(req.labels))
	for i, label := range req.labels {
		indicators[i] = &opts.Indicator{Name: label, Max: scale}
	}
	global := append(a.globalOptions(req, style, theme, "item"),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator:   indicators,
			SplitNumber: 5,
		}),
	)
	radar.SetGlobalOptions(global...)
	radar.AddSeries(req.series[0].Name, []opts.RadarData{{Name: req.series[0].Name, Value: values}},
		charts.WithItemStyleOpts(opts.ItemStyle{Color: style.color(0), BorderColor: style.border(0)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: style.color(0)}),
	)
	return renderChart(radar)
}

func (a *ChartAdapter) renderBar(req chartRequest, style ChartStyle, theme string) (string, error) {
	bar := charts.NewBar()
	global := a.globalOptions(req, style, theme, "axis")
	if req.kind == ChartSatisfaction {
		global = append(global, charts.WithYAxisOpts(opts.YAxis{
			Min:         0,
			Max:         satisfactionScaleMax,
			SplitNumber: satisfactionScaleMax,
		}))
	}
	bar.SetGlobalOptions(global...)
	bar.SetXAxis(req.labels)
	perBar := req.kind == ChartBestSellers
	for _, s := range req.series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			item := opts.BarData{Name: req.labels[i], Value: v}
			if perBar {
				item.ItemStyle = &opts.ItemStyle{Color: style.color(i), BorderColor: style.border(i)}
			}
			data[i] = item
		}
		var seriesOpts []charts.SeriesOpts
		if !perBar {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: style.color(0), BorderColor: style.border(0)}))
		}
		bar.AddSeries(s.Name, data, seriesOpts...)
	}
	return renderChart(bar)
}

func (a *ChartAdapter) renderLine(req chartRequest, style ChartStyle, theme string) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(a.globalOptions(req, style, theme, "axis")...)
	line.SetXAxis(req.labels)
	for idx, s := range req.series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Name: req.labels[i], Value: v}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: style.color(idx)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: style.color(idx)}),
		}
		if req.kind == ChartConversionRate && style.AreaColor != "" {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Color: style.AreaColor}))
		}
		line.AddSeries(s.Name, data, seriesOpts...)
	}
	return renderChart(line)
}

// renderChart emits only the chart element and its init script. The ECharts
// runtime is loaded once per page from ChartAdapter.Scripts.
func renderChart(renderable interface{ RenderSnippet() render.ChartSnippet }) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("echarts snippet: %v", r)
		}
	}()
	snippet := renderable.RenderSnippet()
	return snippet.Element + "\n" + snippet.Script, nil
}

// Scripts lists the script URLs a page needs before its chart snippets run:
// the ECharts runtime plus the theme file for non-default themes.
func (a *ChartAdapter) Scripts(variant ThemeVariant) []string {
	return EChartsScripts(a.assetsHost, variant.EChartsTheme())
}

func (a *ChartAdapter) globalOptions(req chartRequest, style ChartStyle, theme, trigger string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:           theme,
		Width:           style.Width,
		Height:          style.Height,
		ChartID:         chartDOMID(req.mountID),
		BackgroundColor: style.BackgroundColor,
	}
	if a.assetsHost != "" {
		initOpts.AssetsHost = a.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{
			Title:         req.title,
			Subtitle:      req.subtitle,
			TitleStyle:    &opts.TextStyle{Color: style.TextColor},
			SubtitleStyle: &opts.TextStyle{Color: style.TextColor},
		}),
		charts.WithLegendOpts(legendOptions(style)),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
		// WithColorsOpts reverses its argument in place.
		charts.WithColorsOpts(opts.Colors(append([]string(nil), style.Colors...))),
	}
}

func legendOptions(style ChartStyle) opts.Legend {
	legend := opts.Legend{
		Show:      opts.Bool(true),
		TextStyle: &opts.TextStyle{Color: style.TextColor},
	}
	switch style.LegendPosition {
	case "right":
		legend.Orient = "vertical"
		legend.Right = "0"
		legend.Top = "middle"
	case "bottom":
		legend.Bottom = "0"
	default:
		legend.Top = "30"
	}
	return legend
}

// chartDOMID keeps the generated element id stable per mount.
func chartDOMID(mountID string) string {
	return "chart_" + strcase.ToSnake(mountID)
}

// periodLabels shows ISO dates from the analytics backend as short en-US
// dates. Labels such as "Jan" pass through.
func periodLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = ParseAndFormatDate(l, false)
	}
	return out
}

// alignValues returns exactly one value per label: missing values read as 0
// and extra values are dropped.
func alignValues(labels []string, values []float64) []float64 {
	out := make([]float64, len(labels))
	copy(out, values)
	return out
}
