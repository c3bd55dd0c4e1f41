package service

import (
	"context"
	"encoding/json"
	"sync"

	"osa-dashboard/internal/charting"
	"osa-dashboard/internal/model"
	"osa-dashboard/internal/repository"
)

type fakeKPIRepo struct {
	GetFn  func(ctx context.Context, filter model.KPIFilter) (*model.KPISnapshot, error)
	mu     sync.Mutex
	called int
	last   model.KPIFilter
}

func (f *fakeKPIRepo) Get(ctx context.Context, filter model.KPIFilter) (*model.KPISnapshot, error) {
	f.mu.Lock()
	f.called++
	f.last = filter
	f.mu.Unlock()
	return f.GetFn(ctx, filter)
}

type fakeAuthRepo struct {
	LoginFn func(ctx context.Context, username, password string) (*repository.LoginResult, error)
	called  bool
}

func (f *fakeAuthRepo) Login(ctx context.Context, username, password string) (*repository.LoginResult, error) {
	f.called = true
	return f.LoginFn(ctx, username, password)
}

type fakeStoreRepo struct {
	CreateFn func(ctx context.Context, in model.StoreInput) (*model.Store, error)
	DeleteFn func(ctx context.Context, id int64) error
	called   bool
	lastIn   model.StoreInput
}

func (f *fakeStoreRepo) FindAll(context.Context, string, int) ([]model.Store, error) {
	return []model.Store{}, nil
}

func (f *fakeStoreRepo) FindByID(_ context.Context, id int64) (*model.Store, error) {
	return &model.Store{ID: id}, nil
}

func (f *fakeStoreRepo) Create(ctx context.Context, in model.StoreInput) (*model.Store, error) {
	f.called = true
	f.lastIn = in
	return f.CreateFn(ctx, in)
}

func (f *fakeStoreRepo) Update(ctx context.Context, id int64, in model.StoreInput) (*model.Store, error) {
	f.called = true
	f.lastIn = in
	return &model.Store{ID: id, Name: in.Name}, nil
}

func (f *fakeStoreRepo) Delete(ctx context.Context, id int64) error {
	f.called = true
	return f.DeleteFn(ctx, id)
}

type fakeMeasurementRepo struct {
	ListFn    func(ctx context.Context, filter model.KPIFilter, limit int) ([]model.Measurement, error)
	lastLimit int
}

func (f *fakeMeasurementRepo) List(ctx context.Context, filter model.KPIFilter, limit int) ([]model.Measurement, error) {
	f.lastLimit = limit
	return f.ListFn(ctx, filter, limit)
}

type fakeImportRepo struct {
	UploadFn func(ctx context.Context, filename string, content []byte) (*model.ImportResult, error)
	called   bool
	lastName string
}

func (f *fakeImportRepo) UploadExcel(ctx context.Context, filename string, content []byte) (*model.ImportResult, error) {
	f.called = true
	f.lastName = filename
	return f.UploadFn(ctx, filename, content)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	raw    [][]byte
}

func (p *recordingPublisher) Publish(topic string, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.raw = append(p.raw, payload)
}

// chartEvents decodes every published payload that is a chart event.
func (p *recordingPublisher) chartEvents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, b := range p.raw {
		var ev charting.Event
		if err := json.Unmarshal(b, &ev); err == nil && ev.Chart != "" {
			out = append(out, ev.Event)
		}
	}
	return out
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.raw)
}

func sampleSnapshot() *model.KPISnapshot {
	return &model.KPISnapshot{
		Total:  100,
		OSAPct: 92.5,
		OOSPct: 7.5,
		Series: []model.SeriesPoint{
			{Date: "2025-01-01", Value: 90},
			{Date: "2025-01-02", Value: 95},
		},
		WorstSKU: []model.WorstSKU{{Barcode: "123", OSAPct: 40}},
	}
}

func newTestDashboard(repo *fakeKPIRepo) (*Dashboard, *recordingPublisher) {
	pub := &recordingPublisher{}
	d := NewDashboard(repo, charting.NewLiveRenderer(pub, "session-1"), DefaultVisualOptions(), 7, nil)
	return d, pub
}

func staticKPIs(snap *model.KPISnapshot) *fakeKPIRepo {
	return &fakeKPIRepo{GetFn: func(context.Context, model.KPIFilter) (*model.KPISnapshot, error) {
		return snap, nil
	}}
}
