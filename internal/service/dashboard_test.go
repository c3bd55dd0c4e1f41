package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"osa-dashboard/internal/charting"
	"osa-dashboard/internal/model"
	"osa-dashboard/internal/series"
	"osa-dashboard/pkg/osaapi"
)

func TestDashboard_RefreshEndToEnd(t *testing.T) {
	repo := staticKPIs(sampleSnapshot())
	d, pub := newTestDashboard(repo)

	filter := model.KPIFilter{Store: "PV-1"}
	if err := d.Refresh(context.Background(), filter); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if repo.last != filter {
		t.Fatalf("repo got filter %+v", repo.last)
	}

	v := d.View()
	if v.Status != StatusReady || v.Total != 100 || v.OSAPct != 92.5 || len(v.WorstSKU) != 1 {
		t.Fatalf("unexpected view %+v", v)
	}

	primary, _ := v.Line.Dataset(DatasetPrimary)
	if !reflect.DeepEqual(primary.Data, []float64{90, 95}) {
		t.Fatalf("primary data = %v", primary.Data)
	}
	if !reflect.DeepEqual(v.Line.Labels, []string{"2025-01-01", "2025-01-02"}) {
		t.Fatalf("labels = %v", v.Line.Labels)
	}
	ma, _ := v.Line.Dataset(DatasetMovingAverage)
	if ma == nil || !ma.Dashed || ma.Label != "Media móvil (7)" || !reflect.DeepEqual(ma.Data, []float64{90, 92.5}) {
		t.Fatalf("moving average dataset = %+v", ma)
	}
	target := v.Line.Annotations[AnnotationTarget]
	if target == nil || target.YMin != 95 || target.YMax != 95 || target.Label != "Meta 95%" {
		t.Fatalf("target annotation = %+v", target)
	}
	if *v.Line.YMin != 0 || *v.Line.YMax != 100 {
		t.Fatal("line y axis should span 0..100")
	}

	if !reflect.DeepEqual(v.Pie.Labels, []string{"OSA %", "OOS %"}) || !reflect.DeepEqual(v.Pie.Datasets[0].Data, []float64{92.5, 7.5}) {
		t.Fatalf("pie = %+v", v.Pie)
	}

	name, csv, err := d.ExportCSV()
	if err != nil {
		t.Fatalf("ExportCSV error: %v", err)
	}
	if name != "osa_series_day.csv" {
		t.Fatalf("filename = %q", name)
	}
	if want := "date,osa_pct\n2025-01-01,90\n2025-01-02,95"; csv != want {
		t.Fatalf("csv = %q, want %q", csv, want)
	}

	if got := pub.chartEvents(); !reflect.DeepEqual(got, []string{"create", "create"}) {
		t.Fatalf("events = %v", got)
	}
}

func TestDashboard_RefreshRebuildsCharts(t *testing.T) {
	d, pub := newTestDashboard(staticKPIs(sampleSnapshot()))

	for i := 0; i < 2; i++ {
		if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
			t.Fatalf("Refresh %d error: %v", i, err)
		}
	}

	want := []string{"create", "create", "destroy", "destroy", "create", "create"}
	if got := pub.chartEvents(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestDashboard_ApplyBeforeRefreshIsNoop(t *testing.T) {
	repo := staticKPIs(sampleSnapshot())
	d, pub := newTestDashboard(repo)

	opts := VisualOptions{GroupBy: series.ByWeek, ShowMovingAverage: false, Target: 90}
	if err := d.ApplyVisualOptions(opts); err != nil {
		t.Fatalf("ApplyVisualOptions error: %v", err)
	}
	if pub.count() != 0 || repo.called != 0 {
		t.Fatalf("expected no chart events and no fetch, got %d events %d fetches", pub.count(), repo.called)
	}

	v := d.View()
	if v.Status != StatusEmpty || v.Line != nil || v.Options != opts {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestDashboard_ApplyInvalidMode(t *testing.T) {
	d, _ := newTestDashboard(staticKPIs(sampleSnapshot()))
	err := d.ApplyVisualOptions(VisualOptions{GroupBy: "year"})
	if !errors.Is(err, series.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if d.View().Options.GroupBy != series.ByDay {
		t.Fatal("invalid options must not be recorded")
	}
}

func TestDashboard_ApplyPatchesLineOnly(t *testing.T) {
	repo := staticKPIs(&model.KPISnapshot{
		OSAPct: 80, OOSPct: 20,
		Series: []model.SeriesPoint{
			{Date: "2024-12-30", Value: 80},
			{Date: "2025-01-01", Value: 90},
			{Date: "2025-01-06", Value: 100},
		},
	})
	d, pub := newTestDashboard(repo)
	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	before := d.View()

	if err := d.ApplyVisualOptions(VisualOptions{GroupBy: series.ByWeek, ShowMovingAverage: true, Target: 90}); err != nil {
		t.Fatalf("ApplyVisualOptions error: %v", err)
	}
	after := d.View()

	if repo.called != 1 {
		t.Fatalf("apply must not refetch, fetched %d times", repo.called)
	}
	if !reflect.DeepEqual(after.Line.Labels, []string{"2025-W01", "2025-W02"}) {
		t.Fatalf("labels = %v", after.Line.Labels)
	}
	primary, _ := after.Line.Dataset(DatasetPrimary)
	if !reflect.DeepEqual(primary.Data, []float64{85, 100}) {
		t.Fatalf("primary = %v", primary.Data)
	}
	ma, _ := after.Line.Dataset(DatasetMovingAverage)
	if !reflect.DeepEqual(ma.Data, []float64{85, 92.5}) {
		t.Fatalf("moving average = %v", ma.Data)
	}
	target := after.Line.Annotations[AnnotationTarget]
	if target.YMin != 90 || target.YMax != 90 || target.Label != "Meta 90%" {
		t.Fatalf("target = %+v", target)
	}
	if !reflect.DeepEqual(after.Pie, before.Pie) {
		t.Fatal("share chart must not change")
	}

	want := []string{"create", "create", "update"}
	if got := pub.chartEvents(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}

	_, csv, _ := d.ExportCSV()
	if want := "date,osa_pct\n2025-W01,85\n2025-W02,100"; csv != want {
		t.Fatalf("csv = %q", csv)
	}
}

func TestDashboard_MovingAverageToggleRestoresValues(t *testing.T) {
	d, _ := newTestDashboard(staticKPIs(sampleSnapshot()))
	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	original, _ := d.View().Line.Dataset(DatasetMovingAverage)

	off := VisualOptions{GroupBy: series.ByDay, ShowMovingAverage: false, Target: 95}
	if err := d.ApplyVisualOptions(off); err != nil {
		t.Fatalf("apply off: %v", err)
	}
	if ds, _ := d.View().Line.Dataset(DatasetMovingAverage); ds != nil {
		t.Fatal("moving average dataset should be removed")
	}

	on := off
	on.ShowMovingAverage = true
	if err := d.ApplyVisualOptions(on); err != nil {
		t.Fatalf("apply on: %v", err)
	}
	restored, _ := d.View().Line.Dataset(DatasetMovingAverage)
	if !reflect.DeepEqual(restored, original) {
		t.Fatalf("restored %+v, want %+v", restored, original)
	}

	// Applying again while present replaces values without duplicating.
	if err := d.ApplyVisualOptions(on); err != nil {
		t.Fatalf("apply on again: %v", err)
	}
	if n := len(d.View().Line.Datasets); n != 2 {
		t.Fatalf("datasets = %d, want 2", n)
	}
}

func TestDashboard_FetchFailureKeepsState(t *testing.T) {
	repo := staticKPIs(sampleSnapshot())
	d, pub := newTestDashboard(repo)
	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	before := d.View()

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"upstream status", &osaapi.StatusError{Status: 500, Message: "db down"}, "db down"},
		{"transport", errors.New("dial tcp: connection refused"), "Error cargando KPIs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.GetFn = func(context.Context, model.KPIFilter) (*model.KPISnapshot, error) {
				return nil, tt.err
			}
			err := d.Refresh(context.Background(), model.KPIFilter{Store: "PV-9"})
			if !errors.Is(err, ErrFetch) {
				t.Fatalf("expected ErrFetch, got %v", err)
			}

			after := d.View()
			if after.Message != tt.message {
				t.Fatalf("message = %q, want %q", after.Message, tt.message)
			}
			if !reflect.DeepEqual(after.Line, before.Line) || !reflect.DeepEqual(after.Pie, before.Pie) || after.Total != before.Total {
				t.Fatal("failed refresh must leave charts and snapshot untouched")
			}
		})
	}

	if got := len(pub.chartEvents()); got != 2 {
		t.Fatalf("failed refreshes emitted chart events: %d", got)
	}
}

func TestDashboard_StaleResponseDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	repo := &fakeKPIRepo{GetFn: func(_ context.Context, f model.KPIFilter) (*model.KPISnapshot, error) {
		if f.Store == "slow" {
			close(slowStarted)
			<-releaseSlow
			return &model.KPISnapshot{Total: 1}, nil
		}
		return &model.KPISnapshot{Total: 2}, nil
	}}
	d, _ := newTestDashboard(repo)

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- d.Refresh(context.Background(), model.KPIFilter{Store: "slow"})
	}()
	<-slowStarted

	if err := d.Refresh(context.Background(), model.KPIFilter{Store: "fast"}); err != nil {
		t.Fatalf("fast Refresh error: %v", err)
	}
	close(releaseSlow)

	if err := <-slowErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if v := d.View(); v.Total != 2 || v.Filter.Store != "fast" {
		t.Fatalf("stale response overwrote newer state: %+v", v)
	}
}

func TestDashboard_Teardown(t *testing.T) {
	d, pub := newTestDashboard(staticKPIs(sampleSnapshot()))
	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	_ = d.ApplyVisualOptions(VisualOptions{GroupBy: series.ByMonth, Target: 80})

	d.Teardown()
	d.Teardown()

	v := d.View()
	if v.Status != StatusEmpty || v.Line != nil || v.Pie != nil || v.Options != DefaultVisualOptions() {
		t.Fatalf("unexpected view after teardown %+v", v)
	}
	if _, _, err := d.ExportCSV(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	want := []string{"create", "create", "update", "destroy", "destroy"}
	if got := pub.chartEvents(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestDashboard_TeardownInvalidatesInflight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	repo := &fakeKPIRepo{GetFn: func(context.Context, model.KPIFilter) (*model.KPISnapshot, error) {
		close(started)
		<-release
		return sampleSnapshot(), nil
	}}
	d, pub := newTestDashboard(repo)

	done := make(chan error, 1)
	go func() { done <- d.Refresh(context.Background(), model.KPIFilter{}) }()
	<-started
	d.Teardown()
	close(release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if d.View().Status != StatusEmpty || pub.count() != 0 {
		t.Fatal("response after teardown must not create charts")
	}
}

func TestDashboard_EmptySnapshotRendersEmptyCharts(t *testing.T) {
	d, _ := newTestDashboard(staticKPIs(&model.KPISnapshot{}))
	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	v := d.View()
	if v.Status != StatusReady || len(v.Line.Labels) != 0 {
		t.Fatalf("unexpected view %+v", v)
	}
	primary, _ := v.Line.Dataset(DatasetPrimary)
	if len(primary.Data) != 0 {
		t.Fatalf("primary = %v", primary.Data)
	}
	_, csv, err := d.ExportCSV()
	if err != nil || csv != "date,osa_pct" {
		t.Fatalf("csv = %q, %v", csv, err)
	}
}

func TestDashboard_NilSnapshotTreatedAsEmpty(t *testing.T) {
	d, _ := newTestDashboard(staticKPIs(nil))
	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if d.View().Status != StatusReady {
		t.Fatal("nil snapshot should still produce charts")
	}
}

func TestDashboard_InstancesAreIndependent(t *testing.T) {
	a, _ := newTestDashboard(staticKPIs(sampleSnapshot()))
	b, _ := newTestDashboard(staticKPIs(sampleSnapshot()))

	if err := a.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if b.View().Status != StatusEmpty {
		t.Fatal("refreshing one dashboard must not affect another")
	}
}

func TestDashboard_DefaultModeIsNormalized(t *testing.T) {
	defaults := VisualOptions{GroupBy: " Week", ShowMovingAverage: false, Target: 95}
	d := NewDashboard(staticKPIs(sampleSnapshot()), charting.NewLiveRenderer(nil, "s"), defaults, 7, nil)

	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	v := d.View()
	if v.Options.GroupBy != series.ByWeek {
		t.Fatalf("group mode = %q, want week", v.Options.GroupBy)
	}
	if !reflect.DeepEqual(v.Line.Labels, []string{"2025-W01"}) || v.Line.Title != "OSA % por semana" {
		t.Fatalf("labels = %v title = %q", v.Line.Labels, v.Line.Title)
	}
	name, csv, _ := d.ExportCSV()
	if name != "osa_series_week.csv" || csv != "date,osa_pct\n2025-W01,92.5" {
		t.Fatalf("export = %q %q", name, csv)
	}

	d.Teardown()
	if got := d.View().Options.GroupBy; got != series.ByWeek {
		t.Fatalf("teardown restored %q", got)
	}
}

func TestDashboard_UnknownDefaultModeFallsBackToDay(t *testing.T) {
	d := NewDashboard(staticKPIs(sampleSnapshot()), charting.NewLiveRenderer(nil, "s"), VisualOptions{GroupBy: "year"}, 7, nil)
	if got := d.View().Options.GroupBy; got != series.ByDay {
		t.Fatalf("group mode = %q, want day", got)
	}
}

func TestDashboard_UpdateVisualOptionsKeepsConcurrentFields(t *testing.T) {
	d, _ := newTestDashboard(staticKPIs(sampleSnapshot()))
	if err := d.Refresh(context.Background(), model.KPIFilter{}); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = d.UpdateVisualOptions(func(o *VisualOptions) { o.Target = 80 })
		}()
		go func() {
			defer wg.Done()
			_ = d.UpdateVisualOptions(func(o *VisualOptions) { o.ShowMovingAverage = false })
		}()
	}
	wg.Wait()

	got := d.View().Options
	want := VisualOptions{GroupBy: series.ByDay, ShowMovingAverage: false, Target: 80}
	if got != want {
		t.Fatalf("options = %+v, want %+v", got, want)
	}
}

func TestDashboard_UpdateVisualOptionsRejectsBadMode(t *testing.T) {
	d, _ := newTestDashboard(staticKPIs(sampleSnapshot()))

	err := d.UpdateVisualOptions(func(o *VisualOptions) {
		o.GroupBy = "year"
		o.Target = 10
	})
	if !errors.Is(err, series.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if got := d.View().Options; got != DefaultVisualOptions() {
		t.Fatalf("options changed to %+v", got)
	}
}
