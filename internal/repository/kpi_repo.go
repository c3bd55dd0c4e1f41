package repository

import (
	"context"

	"osa-dashboard/internal/model"
	"osa-dashboard/pkg/osaapi"
)

type KPIRepository interface {
	Get(ctx context.Context, filter model.KPIFilter) (*model.KPISnapshot, error)
}

type kpiRepo struct {
	api *osaapi.Client
}

func NewKPIRepo(api *osaapi.Client) KPIRepository {
	return &kpiRepo{api}
}

func (r *kpiRepo) Get(ctx context.Context, filter model.KPIFilter) (*model.KPISnapshot, error) {
	var snap model.KPISnapshot
	if err := r.api.GetJSON(ctx, "/api/kpis", filter.Query(), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
