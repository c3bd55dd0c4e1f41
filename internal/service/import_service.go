package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"osa-dashboard/internal/model"
	"osa-dashboard/internal/repository"
)

// RequiredColumns must all appear in the header row of an import workbook.
var RequiredColumns = []string{
	"IdConjuntoProducto",
	"Fecha",
	"PV",
	"Codigo de Barra",
	"Descripcion SKU",
	"ESTADO",
	"Tipo de Resultado",
}

type ImportSummary struct {
	model.ImportResult
	Message string `json:"message"`
}

type ImportService interface {
	Import(ctx context.Context, filename string, content []byte) (*ImportSummary, error)
}

type importService struct {
	repo repository.ImportRepository
	log  *zap.Logger
}

func NewImportService(repo repository.ImportRepository, log *zap.Logger) ImportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &importService{repo: repo, log: log}
}

func (s *importService) Import(ctx context.Context, filename string, content []byte) (*ImportSummary, error) {
	if err := Preflight(filename, content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}

	res, err := s.repo.UploadExcel(ctx, filepath.Base(filename), content)
	if err != nil {
		s.log.Warn("import upload failed", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("%w: Error al importar: %s", ErrImport, upstreamMessage(err, err.Error()))
	}

	s.log.Info("import finished",
		zap.String("filename", filename),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped", res.Skipped),
		zap.Int("total_rows", res.TotalRows),
	)
	return &ImportSummary{
		ImportResult: *res,
		Message:      fmt.Sprintf("Insertados: %d, Omitidos: %d, Total: %d", res.Inserted, res.Skipped, res.TotalRows),
	}, nil
}

// Preflight opens the workbook and checks that its first sheet carries
// every required header. Rows are not inspected.
func Preflight(filename string, content []byte) error {
	if len(content) == 0 {
		return errors.New("archivo vacío")
	}

	var (
		header []string
		err    error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		header, err = xlsxHeader(content)
	case ".xls":
		header, err = xlsHeader(content)
	default:
		return errors.New("Archivo debe ser .xlsx o .xls")
	}
	if err != nil {
		return fmt.Errorf("Error leyendo Excel: %w", err)
	}

	if missing := missingColumns(header); len(missing) > 0 {
		return fmt.Errorf("Faltan columnas: %s", strings.Join(missing, ", "))
	}
	return nil
}

func xlsxHeader(content []byte) ([]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}

	rows, err := file.Rows(sheetName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, errors.New("worksheet is empty")
	}
	return rows.Columns()
}

func xlsHeader(content []byte) (header []string, err error) {
	// The BIFF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			header, err = nil, fmt.Errorf("malformed xls: %v", r)
		}
	}()

	workbook, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found")
	}
	row := sheet.Row(0)
	if row == nil {
		return nil, errors.New("worksheet is empty")
	}

	header = make([]string, 0, row.LastCol())
	for i := row.FirstCol(); i < row.LastCol(); i++ {
		header = append(header, row.Col(i))
	}
	return header, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[strings.ToLower(col)] {
			missing = append(missing, col)
		}
	}
	return missing
}
