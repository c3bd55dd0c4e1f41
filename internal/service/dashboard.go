package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"osa-dashboard/internal/charting"
	"osa-dashboard/internal/model"
	"osa-dashboard/internal/repository"
	"osa-dashboard/internal/series"
)

const (
	DatasetPrimary       = "osa"
	DatasetMovingAverage = "moving-average"
	DatasetShare         = "share"
	AnnotationTarget     = "targetLine"

	StatusEmpty = "empty"
	StatusReady = "ready"

	fetchFailedMessage = "Error cargando KPIs"
)

type VisualOptions struct {
	GroupBy           series.GroupMode `json:"group_by"`
	ShowMovingAverage bool             `json:"show_moving_average"`
	Target            float64          `json:"target"`
}

// DefaultVisualOptions is what a new dashboard starts with.
func DefaultVisualOptions() VisualOptions {
	return VisualOptions{GroupBy: series.ByDay, ShowMovingAverage: true, Target: 95}
}

// DashboardView is a read-only copy of a dashboard's state.
type DashboardView struct {
	Status   string           `json:"status"`
	Total    int64            `json:"total"`
	OSAPct   float64          `json:"osa_pct"`
	OOSPct   float64          `json:"oos_pct"`
	WorstSKU []model.WorstSKU `json:"worst_sku"`
	Options  VisualOptions    `json:"options"`
	Line     *charting.Config `json:"line,omitempty"`
	Pie      *charting.Config `json:"pie,omitempty"`
	Message  string           `json:"message,omitempty"`
	Filter   *model.KPIFilter `json:"filter,omitempty"`
}

// Dashboard owns the cached KPI snapshot and the two chart handles of one
// session. A refresh rebuilds both charts; visual option changes patch the
// line chart in place from the cached snapshot.
type Dashboard struct {
	mu       sync.Mutex
	kpis     repository.KPIRepository
	renderer charting.Renderer
	log      *zap.Logger
	window   int
	defaults VisualOptions

	opts     VisualOptions
	snapshot *model.KPISnapshot
	filter   model.KPIFilter
	line     charting.Chart
	pie      charting.Chart
	seq      uint64
	message  string
}

func NewDashboard(kpis repository.KPIRepository, renderer charting.Renderer, defaults VisualOptions, window int, log *zap.Logger) *Dashboard {
	if window <= 0 {
		window = series.DefaultWindow
	}
	if mode, err := series.ParseGroupMode(string(defaults.GroupBy)); err != nil {
		defaults.GroupBy = series.ByDay
	} else {
		defaults.GroupBy = mode
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dashboard{
		kpis:     kpis,
		renderer: renderer,
		log:      log,
		window:   window,
		defaults: defaults,
		opts:     defaults,
	}
}

// Refresh fetches a new snapshot and rebuilds both charts. A response that
// arrives after a newer Refresh or Teardown was issued is discarded with
// ErrSuperseded. On fetch failure the previous charts are kept.
func (d *Dashboard) Refresh(ctx context.Context, filter model.KPIFilter) error {
	d.mu.Lock()
	d.seq++
	token := d.seq
	d.mu.Unlock()

	snap, err := d.kpis.Get(ctx, filter)

	d.mu.Lock()
	defer d.mu.Unlock()

	if token != d.seq {
		d.log.Debug("discarding stale kpi response", zap.Uint64("token", token), zap.Uint64("latest", d.seq))
		return ErrSuperseded
	}
	if err != nil {
		d.message = upstreamMessage(err, fetchFailedMessage)
		d.log.Warn("kpi fetch failed", zap.Error(err))
		return wrapUpstream(ErrFetch, err)
	}
	if snap == nil {
		snap = &model.KPISnapshot{}
	}

	d.destroyCharts()
	d.snapshot = snap
	d.filter = filter
	d.message = ""

	line, err := d.renderer.NewChart(d.lineConfig())
	if err != nil {
		return fmt.Errorf("create line chart: %w", err)
	}
	d.line = line

	pie, err := d.renderer.NewChart(pieConfig(snap))
	if err != nil {
		return fmt.Errorf("create share chart: %w", err)
	}
	d.pie = pie
	return nil
}

// ApplyVisualOptions records opts and, when data is loaded, patches the
// line chart without refetching. The share chart is never touched.
func (d *Dashboard) ApplyVisualOptions(opts VisualOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyOptions(opts)
}

// UpdateVisualOptions edits a copy of the current options with fn and
// applies the result under the same lock, so concurrent partial updates
// never drop each other's fields. On error the options are left unchanged.
func (d *Dashboard) UpdateVisualOptions(fn func(*VisualOptions)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	opts := d.opts
	fn(&opts)
	return d.applyOptions(opts)
}

// applyOptions must be called with d.mu held.
func (d *Dashboard) applyOptions(opts VisualOptions) error {
	mode, err := series.ParseGroupMode(string(opts.GroupBy))
	if err != nil {
		return err
	}
	opts.GroupBy = mode

	d.opts = opts
	if d.snapshot == nil || d.line == nil {
		return nil
	}

	labels, values, ma := d.derive()
	cfg := d.line.Config()
	cfg.Labels = labels

	if ds, _ := cfg.Dataset(DatasetPrimary); ds != nil {
		ds.Data = values
	}
	if opts.ShowMovingAverage {
		if ds, _ := cfg.Dataset(DatasetMovingAverage); ds != nil {
			ds.Data = ma
		} else {
			cfg.Datasets = append(cfg.Datasets, d.movingAverageDataset(ma))
		}
	} else {
		cfg.RemoveDataset(DatasetMovingAverage)
	}

	if cfg.Annotations == nil {
		cfg.Annotations = map[string]*charting.Annotation{}
	}
	target, ok := cfg.Annotations[AnnotationTarget]
	if !ok {
		target = targetAnnotation(opts.Target)
		cfg.Annotations[AnnotationTarget] = target
	}
	target.YMin = opts.Target
	target.YMax = opts.Target
	target.Label = targetLabel(opts.Target)

	return d.line.Update()
}

// Teardown destroys both charts, drops the snapshot and invalidates any
// in-flight Refresh.
func (d *Dashboard) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.destroyCharts()
	d.snapshot = nil
	d.filter = model.KPIFilter{}
	d.message = ""
	d.opts = d.defaults
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := DashboardView{
		Status:   StatusEmpty,
		WorstSKU: []model.WorstSKU{},
		Options:  d.opts,
		Message:  d.message,
	}
	if d.snapshot == nil {
		return v
	}

	v.Status = StatusReady
	v.Total = d.snapshot.Total
	v.OSAPct = d.snapshot.OSAPct
	v.OOSPct = d.snapshot.OOSPct
	if d.snapshot.WorstSKU != nil {
		v.WorstSKU = append([]model.WorstSKU(nil), d.snapshot.WorstSKU...)
	}
	f := d.filter
	v.Filter = &f
	if d.line != nil {
		v.Line = d.line.Config().Clone()
	}
	if d.pie != nil {
		v.Pie = d.pie.Config().Clone()
	}
	return v
}

// ExportCSV returns the file name and content for the cached series under
// the current group mode.
func (d *Dashboard) ExportCSV() (string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snapshot == nil {
		return "", "", ErrNoSnapshot
	}
	buckets := series.Group(d.snapshot.Series, d.opts.GroupBy)
	return series.ExportFilename(d.opts.GroupBy), series.CSV(buckets), nil
}

func (d *Dashboard) destroyCharts() {
	if d.line != nil {
		d.line.Destroy()
		d.line = nil
	}
	if d.pie != nil {
		d.pie.Destroy()
		d.pie = nil
	}
}

// derive groups the cached series under the current options. ma is nil
// when the moving average is off.
func (d *Dashboard) derive() (labels []string, values, ma []float64) {
	buckets := series.Group(d.snapshot.Series, d.opts.GroupBy)
	labels = series.Labels(buckets)
	values = series.Values(buckets)
	if d.opts.ShowMovingAverage {
		// window is always positive here.
		ma, _ = series.MovingAverage(values, d.window)
	}
	return labels, values, ma
}

func (d *Dashboard) lineConfig() *charting.Config {
	labels, values, ma := d.derive()

	cfg := &charting.Config{
		Type:   charting.TypeLine,
		Title:  "OSA % por " + groupTitle(d.opts.GroupBy),
		Labels: labels,
		Datasets: []*charting.Dataset{{
			ID:          DatasetPrimary,
			Label:       "OSA %",
			Data:        values,
			Tension:     0.35,
			PointRadius: 2,
			BorderWidth: 2,
			Color:       "#4F46E5",
		}},
		Annotations: map[string]*charting.Annotation{
			AnnotationTarget: targetAnnotation(d.opts.Target),
		},
		YMin: charting.Float(0),
		YMax: charting.Float(100),
	}
	if d.opts.ShowMovingAverage {
		cfg.Datasets = append(cfg.Datasets, d.movingAverageDataset(ma))
	}
	return cfg
}

func (d *Dashboard) movingAverageDataset(ma []float64) *charting.Dataset {
	return &charting.Dataset{
		ID:          DatasetMovingAverage,
		Label:       fmt.Sprintf("Media móvil (%d)", d.window),
		Data:        ma,
		Dashed:      true,
		Tension:     0.35,
		PointRadius: 0,
		BorderWidth: 2,
		Color:       "#F59E0B",
	}
}

func pieConfig(snap *model.KPISnapshot) *charting.Config {
	return &charting.Config{
		Type:   charting.TypeDoughnut,
		Title:  "Participación OSA / OOS",
		Labels: []string{"OSA %", "OOS %"},
		Datasets: []*charting.Dataset{{
			ID:     DatasetShare,
			Label:  "OSA vs OOS",
			Data:   []float64{snap.OSAPct, snap.OOSPct},
			Colors: []string{"#10B981", "#EF4444"},
		}},
	}
}

func targetAnnotation(target float64) *charting.Annotation {
	return &charting.Annotation{
		Type:  "line",
		YMin:  target,
		YMax:  target,
		Label: targetLabel(target),
		Color: "#EF4444",
	}
}

func targetLabel(target float64) string {
	return "Meta " + strconv.FormatFloat(target, 'f', -1, 64) + "%"
}

func groupTitle(mode series.GroupMode) string {
	switch mode {
	case series.ByWeek:
		return "semana"
	case series.ByMonth:
		return "mes"
	default:
		return "día"
	}
}
