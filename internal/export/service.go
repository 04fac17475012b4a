package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/entity"
	"github.com/joseph-ayodele/docextract/internal/repository"
)

// Service is a tiny façade over the job repository that renders extraction
// reports as XLSX workbooks.
type Service struct {
	jobs   repository.JobRepository
	logger *slog.Logger
}

func NewService(jobs repository.JobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportReportXLSX loads a finished job and returns its report as an XLSX
// workbook (as bytes) with one sheet per extraction kind.
func (s *Service) ExportReportXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	start := time.Now()

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, common.WrapError(err, "load job")
	}
	if len(job.Report) == 0 {
		return nil, fmt.Errorf("job %s has no report yet", jobID)
	}
	var report entity.ExtractionReport
	if err := json.Unmarshal(job.Report, &report); err != nil {
		return nil, fmt.Errorf("decode stored report: %w", err)
	}

	buf, err := RenderReportXLSX(report)
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", jobID.String(),
		"key_values", len(report.KeyValues),
		"tables", len(report.Tables),
		"signatures", len(report.Signatures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}

// RenderReportXLSX builds the workbook without touching storage.
func RenderReportXLSX(report entity.ExtractionReport) ([]byte, error) {
	f := excelize.NewFile()

	if err := writeKeyValues(f, report); err != nil {
		return nil, err
	}
	if err := writeTables(f, report); err != nil {
		return nil, err
	}
	if err := writeSignatures(f, report); err != nil {
		return nil, err
	}

	// Drop excelize's default sheet so Key Values opens first.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if idx, _ := f.GetSheetIndex("Key Values"); idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeKeyValues(f *excelize.File, report entity.ExtractionReport) error {
	const sheet = "Key Values"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeaderRow(f, sheet, []string{"Key", "Value", "Confidence"})
	row := 2
	for _, kv := range report.KeyValues {
		write := cellWriter(f, sheet, row)
		write(1, kv.Key)
		write(2, kv.Value)
		write(3, kv.Confidence)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	return nil
}

func writeTables(f *excelize.File, report entity.ExtractionReport) error {
	// One sheet per extracted table, preserving the cell grid.
	for i, table := range report.Tables {
		sheet := fmt.Sprintf("Table %d", i+1)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		for r, rowCells := range table.Rows {
			write := cellWriter(f, sheet, r+1)
			for c, text := range rowCells {
				write(c+1, text)
			}
		}
	}
	return nil
}

func writeSignatures(f *excelize.File, report entity.ExtractionReport) error {
	const sheet = "Signatures"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeaderRow(f, sheet, []string{"ID", "Page", "Confidence", "Status"})
	row := 2
	for _, sig := range report.Signatures {
		write := cellWriter(f, sheet, row)
		write(1, sig.ID)
		write(2, sig.Page)
		write(3, sig.Confidence)
		write(4, string(sig.Status))
		row++
	}
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "D", "D", 16)

	if !report.HumanReview.Required {
		return nil
	}
	const reviewSheet = "Human Review"
	if _, err := f.NewSheet(reviewSheet); err != nil {
		return err
	}
	writeHeaderRow(f, reviewSheet, []string{"Type", "ID", "Page", "Confidence", "Reason"})
	row = 2
	for _, item := range report.HumanReview.Items {
		write := cellWriter(f, reviewSheet, row)
		write(1, item.Type)
		write(2, item.ID)
		write(3, item.Page)
		write(4, item.Confidence)
		write(5, item.Reason)
		row++
	}
	_ = f.SetColWidth(reviewSheet, "E", "E", 48)
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
