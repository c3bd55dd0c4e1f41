package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"osa-dashboard/internal/model"
	"osa-dashboard/pkg/osaapi"
)

func TestStoreService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    model.StoreInput
		field string
	}{
		{"missing name", model.StoreInput{}, "StoreInput.Name"},
		{"blank name", model.StoreInput{Name: "   "}, "StoreInput.Name"},
		{"short name", model.StoreInput{Name: "A"}, "StoreInput.Name"},
		{"long provincia", model.StoreInput{Name: "Norte", Provincia: strings.Repeat("p", 81)}, "StoreInput.Provincia"},
		{"long formato", model.StoreInput{Name: "Norte", Formato: strings.Repeat("f", 61)}, "StoreInput.Formato"},
		{"long cliente", model.StoreInput{Name: "Norte", Cliente: strings.Repeat("c", 121)}, "StoreInput.Cliente"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeStoreRepo{}
			svc := NewStoreService(repo)

			_, err := svc.Create(context.Background(), tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Fields[0].FailedField != tt.field {
				t.Fatalf("failed field = %s, want %s", verr.Fields[0].FailedField, tt.field)
			}
			if repo.called {
				t.Fatal("upstream must not be called for an invalid form")
			}
		})
	}
}

func TestStoreService_CreateTrimsInput(t *testing.T) {
	repo := &fakeStoreRepo{CreateFn: func(_ context.Context, in model.StoreInput) (*model.Store, error) {
		return &model.Store{ID: 1, Name: in.Name, Provincia: in.Provincia}, nil
	}}
	svc := NewStoreService(repo)

	store, err := svc.Create(context.Background(), model.StoreInput{Name: "  Norte ", Provincia: " Lima "})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if store.Name != "Norte" || repo.lastIn.Provincia != "Lima" {
		t.Fatalf("input was not trimmed: %+v", repo.lastIn)
	}
}

func TestStoreService_UpstreamErrors(t *testing.T) {
	repo := &fakeStoreRepo{DeleteFn: func(_ context.Context, id int64) error {
		if id == 404 {
			return &osaapi.StatusError{Status: 404, Message: "not found"}
		}
		return &osaapi.StatusError{Status: 500, Message: "boom"}
	}}
	svc := NewStoreService(repo)

	if err := svc.Delete(context.Background(), 404); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
	err := svc.Delete(context.Background(), 1)
	if !errors.Is(err, ErrFetch) || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected ErrFetch carrying upstream message, got %v", err)
	}
}

func TestStoreService_Update(t *testing.T) {
	repo := &fakeStoreRepo{}
	svc := NewStoreService(repo)

	store, err := svc.Update(context.Background(), 7, model.StoreInput{Name: "Sur"})
	if err != nil || store.ID != 7 || store.Name != "Sur" {
		t.Fatalf("Update = %+v, %v", store, err)
	}
}
