package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"healthstats/internal/dataprocessing"
	apperrors "healthstats/internal/errors"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. A full rewrite
// goes through a temporary file in the same directory and replaces the
// target only once everything is flushed.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return apperrors.NewStorageError("create directory for "+filePath, err)
	}

	if options.Append {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return apperrors.NewStorageError("open "+filePath, err)
		}
		if err := writeRecords(file, options, false); err != nil {
			file.Close()
			return apperrors.NewStorageError("append "+filePath, err)
		}
		if err := file.Close(); err != nil {
			return apperrors.NewStorageError("close "+filePath, err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageError("create temporary file for "+filePath, err)
	}
	tmpPath := tmp.Name()
	if err := writeRecords(tmp, options, true); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewStorageError("write "+filePath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewStorageError("close "+filePath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewStorageError("chmod "+filePath, err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewStorageError("replace "+filePath, err)
	}
	return nil
}

func writeRecords(file *os.File, options WriteOptions, header bool) error {
	if options.BOMPrefix && header {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if header && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTable writes a table with its header row and no BOM, the layout
// every downstream reader expects.
func (w *CSVWriter) WriteTable(filePath string, table *dataprocessing.Table) error {
	w.logger.Info("Writing dataset",
		slog.String("file_path", filePath),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)))

	return w.WriteCSV(filePath, WriteOptions{
		Headers: table.Columns,
		Records: table.Rows,
	})
}

// AppendToCSV appends records to an existing CSV file
func (w *CSVWriter) AppendToCSV(filePath string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{
		Records: records,
		Append:  true,
	})
}
