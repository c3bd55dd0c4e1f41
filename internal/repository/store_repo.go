package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"osa-dashboard/internal/model"
	"osa-dashboard/pkg/osaapi"
)

type StoreRepository interface {
	FindAll(ctx context.Context, q string, limit int) ([]model.Store, error)
	FindByID(ctx context.Context, id int64) (*model.Store, error)
	Create(ctx context.Context, in model.StoreInput) (*model.Store, error)
	Update(ctx context.Context, id int64, in model.StoreInput) (*model.Store, error)
	Delete(ctx context.Context, id int64) error
}

type storeRepo struct {
	api *osaapi.Client
}

func NewStoreRepo(api *osaapi.Client) StoreRepository {
	return &storeRepo{api}
}

func (r *storeRepo) FindAll(ctx context.Context, q string, limit int) ([]model.Store, error) {
	query := url.Values{}
	if v := strings.TrimSpace(q); v != "" {
		query.Set("q", v)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var stores []model.Store
	if err := r.api.GetJSON(ctx, "/api/stores", query, &stores); err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []model.Store{}
	}
	return stores, nil
}

func (r *storeRepo) FindByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	if err := r.api.GetJSON(ctx, storePath(id), nil, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) Create(ctx context.Context, in model.StoreInput) (*model.Store, error) {
	var store model.Store
	if err := r.api.SendJSON(ctx, http.MethodPost, "/api/stores", in, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) Update(ctx context.Context, id int64, in model.StoreInput) (*model.Store, error) {
	var store model.Store
	if err := r.api.SendJSON(ctx, http.MethodPut, storePath(id), in, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	return r.api.SendJSON(ctx, http.MethodDelete, storePath(id), nil, nil)
}

func storePath(id int64) string {
	return fmt.Sprintf("/api/stores/%d", id)
}
