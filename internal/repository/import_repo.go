package repository

import (
	"context"

	"osa-dashboard/internal/model"
	"osa-dashboard/pkg/osaapi"
)

type ImportRepository interface {
	UploadExcel(ctx context.Context, filename string, content []byte) (*model.ImportResult, error)
}

type importRepo struct {
	api *osaapi.Client
}

func NewImportRepo(api *osaapi.Client) ImportRepository {
	return &importRepo{api}
}

func (r *importRepo) UploadExcel(ctx context.Context, filename string, content []byte) (*model.ImportResult, error) {
	var res model.ImportResult
	if err := r.api.PostFile(ctx, "/api/import/excel", "file", filename, content, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
