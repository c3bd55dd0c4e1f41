package service

import (
	"context"

	"osa-dashboard/internal/model"
	"osa-dashboard/internal/repository"
)

const (
	DefaultMeasurementLimit = 200
	maxMeasurementLimit     = 5000
)

type MeasurementService interface {
	List(ctx context.Context, filter model.KPIFilter, limit int) ([]model.Measurement, error)
}

type measurementService struct {
	repo repository.MeasurementRepository
}

func NewMeasurementService(repo repository.MeasurementRepository) MeasurementService {
	return &measurementService{repo: repo}
}

func (s *measurementService) List(ctx context.Context, filter model.KPIFilter, limit int) ([]model.Measurement, error) {
	if limit <= 0 {
		limit = DefaultMeasurementLimit
	}
	limit = min(limit, maxMeasurementLimit)

	items, err := s.repo.List(ctx, filter, limit)
	if err != nil {
		return nil, wrapUpstream(ErrFetch, err)
	}
	return items, nil
}
