package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"assettrack/internal/dto"
	"assettrack/internal/model"
	"assettrack/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// exportHeader is both the export layout and the import contract.
var exportHeader = []interface{}{
	"asset_type", "brand", "model", "serial_number", "barcode",
	"location", "status", "borrower", "quantity", "purchase_cost",
}

// ExportService produces and consumes Excel inventory sheets.
type ExportService interface {
	ExportAccessories(ctx context.Context) (*excelize.File, error)
	ImportAccessories(ctx context.Context, actor string, r io.Reader) (*dto.ImportResultResponse, error)
}

type exportService struct {
	repo          repository.AccessoryRepository
	barcodePrefix string
}

func NewExportService(repo repository.AccessoryRepository, barcodePrefix string) ExportService {
	return &exportService{repo: repo, barcodePrefix: barcodePrefix}
}

func (s *exportService) ExportAccessories(ctx context.Context) (*excelize.File, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	for i := range records {
		r := &records[i]
		borrower := ""
		if r.Borrower != nil {
			borrower = *r.Borrower
		}
		row := []interface{}{
			r.AssetType, r.Brand, r.Model, r.SerialNumber, r.Barcode,
			r.Location, string(r.Status), borrower, r.Quantity, r.PurchaseCost.String(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ImportAccessories creates canonical stock records from an uploaded sheet.
// Only descriptive columns plus quantity are read; every imported record
// starts on stock with no lineage. Rows with a barcode that already exists
// are skipped, bad rows are reported but do not abort the rest.
func (s *exportService) ImportAccessories(ctx context.Context, actor string, r io.Reader) (*dto.ImportResultResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return &dto.ImportResultResponse{}, nil
	}

	result := &dto.ImportResultResponse{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		get := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}

		assetType := get(0)
		if assetType == "" {
			result.Skipped++
			continue
		}
		qty, err := strconv.Atoi(get(8))
		if err != nil || qty <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid quantity %q", rowNum, get(8)))
			continue
		}
		cost := decimal.Zero
		if raw := get(9); raw != "" {
			cost, err = decimal.NewFromString(raw)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid purchase_cost %q", rowNum, raw))
				continue
			}
		}

		barcode := get(4)
		if barcode == "" {
			barcode = NewBarcode(s.barcodePrefix)
		} else if _, err := s.repo.FindByBarcode(ctx, barcode); err == nil {
			result.Skipped++
			continue
		}

		rec := &model.AccessoryRecord{
			ID:           uuid.New(),
			AssetType:    assetType,
			Brand:        get(1),
			Model:        get(2),
			SerialNumber: get(3),
			Barcode:      barcode,
			Location:     get(5),
			PurchaseCost: cost,
			Quantity:     qty,
			Status:       model.StatusOnStock,
		}
		rec.AppendAudit(actor, "import", fmt.Sprintf("imported with %d unit(s) on stock", qty))

		if err := s.repo.Create(ctx, rec); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.Created++
	}
	return result, nil
}
