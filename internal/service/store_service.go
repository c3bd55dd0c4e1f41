package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"osa-dashboard/internal/model"
	"osa-dashboard/internal/repository"
	"osa-dashboard/pkg/osaapi"
	"osa-dashboard/pkg/validator"
)

var ErrStoreNotFound = errors.New("store not found")

type StoreService interface {
	List(ctx context.Context, q string, limit int) ([]model.Store, error)
	Get(ctx context.Context, id int64) (*model.Store, error)
	Create(ctx context.Context, in model.StoreInput) (*model.Store, error)
	Update(ctx context.Context, id int64, in model.StoreInput) (*model.Store, error)
	Delete(ctx context.Context, id int64) error
}

type storeService struct {
	repo repository.StoreRepository
}

func NewStoreService(repo repository.StoreRepository) StoreService {
	return &storeService{repo: repo}
}

func (s *storeService) List(ctx context.Context, q string, limit int) ([]model.Store, error) {
	stores, err := s.repo.FindAll(ctx, q, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return stores, nil
}

func (s *storeService) Get(ctx context.Context, id int64) (*model.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return store, nil
}

func (s *storeService) Create(ctx context.Context, in model.StoreInput) (*model.Store, error) {
	in = normalizeStore(in)
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	store, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, storeError(err)
	}
	return store, nil
}

func (s *storeService) Update(ctx context.Context, id int64, in model.StoreInput) (*model.Store, error) {
	in = normalizeStore(in)
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	store, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, storeError(err)
	}
	return store, nil
}

func (s *storeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err)
	}
	return nil
}

func normalizeStore(in model.StoreInput) model.StoreInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Provincia = strings.TrimSpace(in.Provincia)
	in.Formato = strings.TrimSpace(in.Formato)
	in.Cliente = strings.TrimSpace(in.Cliente)
	return in
}

func storeError(err error) error {
	if osaapi.StatusCode(err) == http.StatusNotFound {
		return ErrStoreNotFound
	}
	return wrapUpstream(ErrFetch, err)
}
