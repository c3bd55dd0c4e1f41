package repository

import (
	"context"
	"strconv"

	"osa-dashboard/internal/model"
	"osa-dashboard/pkg/osaapi"
)

type MeasurementRepository interface {
	List(ctx context.Context, filter model.KPIFilter, limit int) ([]model.Measurement, error)
}

type measurementRepo struct {
	api *osaapi.Client
}

func NewMeasurementRepo(api *osaapi.Client) MeasurementRepository {
	return &measurementRepo{api}
}

func (r *measurementRepo) List(ctx context.Context, filter model.KPIFilter, limit int) ([]model.Measurement, error) {
	q := filter.Query()
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var res model.MeasurementList
	if err := r.api.GetJSON(ctx, "/api/measurements", q, &res); err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []model.Measurement{}
	}
	return res.Items, nil
}
