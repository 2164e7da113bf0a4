package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"healthstats/internal/dataprocessing"
	apperrors "healthstats/internal/errors"
)

// Sheet pairs a workbook sheet name with its content.
type Sheet struct {
	Name  string
	Table *dataprocessing.Table
}

// WorkbookExporter writes several datasets into one .xlsx file, one sheet
// per dataset, with numeric cells stored as numbers.
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{logger: logger}
}

// Export writes sheets to path in order. Duplicate sheet names fail.
func (w *WorkbookExporter) Export(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return apperrors.NewAppValidationError("workbook has no sheets", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create directory for "+path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.NewStorageError("create header style", err)
	}

	defaultSheet := f.GetSheetName(0)
	seen := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		name := sheetName(sheet.Name)
		if seen[name] {
			return apperrors.NewAppValidationError(fmt.Sprintf("duplicate sheet name %q", name), nil)
		}
		seen[name] = true

		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return apperrors.NewStorageError("rename sheet "+name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return apperrors.NewStorageError("create sheet "+name, err)
		}

		if err := writeSheet(f, name, sheet.Table, headerStyle); err != nil {
			return apperrors.NewStorageError("write sheet "+name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("save workbook "+path, err)
	}

	w.logger.Info("Exported workbook",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)))
	return nil
}

func writeSheet(f *excelize.File, name string, table *dataprocessing.Table, headerStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return err
	}

	for r, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = dataprocessing.TypedValue(v)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}
