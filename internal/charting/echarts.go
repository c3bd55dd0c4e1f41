package charting

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "900px"
	chartHeight = "360px"
)

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// RenderPage writes a standalone HTML page with one echarts chart per config.
// Nil configs are skipped.
func RenderPage(w io.Writer, title string, cfgs ...*Config) error {
	page := components.NewPage()
	page.PageTitle = title

	for _, cfg := range cfgs {
		if cfg == nil {
			continue
		}
		switch cfg.Type {
		case TypeLine:
			page.AddCharts(buildLine(cfg))
		case TypeDoughnut:
			page.AddCharts(buildDoughnut(cfg))
		default:
			return fmt.Errorf("charting: unsupported chart type %q", cfg.Type)
		}
	}

	return page.Render(w)
}

func buildLine(cfg *Config) *charts.Line {
	line := charts.NewLine()

	yAxis := opts.YAxis{
		AxisLabel: &opts.AxisLabel{Formatter: "{value}%"},
	}
	if cfg.YMin != nil {
		yAxis.Min = *cfg.YMin
	}
	if cfg.YMax != nil {
		yAxis.Max = *cfg.YMax
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: cfg.Title}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "top",
		}),
		charts.WithYAxisOpts(yAxis),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			XAxisIndex: []int{0},
		}),
	)

	line.SetXAxis(cfg.Labels)

	for i, ds := range cfg.Datasets {
		data := make([]opts.LineData, len(ds.Data))
		for j, v := range ds.Data {
			data[j] = opts.LineData{Value: v}
		}

		color := ds.Color
		if color == "" {
			color = defaultColors[i%len(defaultColors)]
		}

		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:     opts.Bool(ds.Tension > 0),
				ShowSymbol: opts.Bool(ds.PointRadius > 0),
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		}
		if ds.Dashed {
			seriesOpts = append(seriesOpts, charts.WithLineStyleOpts(opts.LineStyle{
				Type:  "dashed",
				Width: float32(ds.BorderWidth),
				Color: color,
			}))
		}
		// echarts attaches mark lines to a series, so annotations ride on the first one.
		if i == 0 {
			for _, a := range cfg.Annotations {
				seriesOpts = append(seriesOpts,
					charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
						Name:  a.Label,
						YAxis: a.YMin,
					}),
					charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
						Symbol: []string{"none"},
					}),
				)
			}
		}

		line.AddSeries(ds.Label, data, seriesOpts...)
	}

	return line
}

func buildDoughnut(cfg *Config) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{Title: cfg.Title}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: "{b}: {c}",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "top",
		}),
	)

	name := cfg.Title
	var (
		values []float64
		colors []string
	)
	if len(cfg.Datasets) > 0 {
		values = cfg.Datasets[0].Data
		colors = cfg.Datasets[0].Colors
		if cfg.Datasets[0].Label != "" {
			name = cfg.Datasets[0].Label
		}
	}

	data := make([]opts.PieData, 0, len(cfg.Labels))
	for i, label := range cfg.Labels {
		item := opts.PieData{Name: label}
		if i < len(values) {
			item.Value = values[i]
		}
		if i < len(colors) {
			item.ItemStyle = &opts.ItemStyle{Color: colors[i]}
		}
		data = append(data, item)
	}

	pie.AddSeries(name, data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}%",
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"40%", "70%"},
			}),
		)

	return pie
}
