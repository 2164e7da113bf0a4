package dataprocessing

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "healthstats/internal/errors"
)

const utf8BOM = "\ufeff"

// ReadOptions controls how a CSV source is parsed.
type ReadOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// SkipMalformed drops rows with more fields than the header, and rows
	// with broken quoting, instead of failing.
	SkipMalformed bool
	Logger        *slog.Logger
}

// ReadStats counts what happened while reading a source.
type ReadStats struct {
	Rows    int
	Skipped int
}

// ReadCSV loads the file at path into a Table named after the path.
func ReadCSV(path string, opts ReadOptions) (*Table, ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, ReadStats{}, apperrors.NewNotFoundError(path).WithContext("path", path)
		}
		return nil, ReadStats{}, apperrors.NewStorageError("open "+path, err)
	}
	defer f.Close()

	return ParseCSV(f, path, opts)
}

// ParseCSV reads CSV from r. The first record is the header. Rows shorter
// than the header are padded with missing values.
func ParseCSV(r io.Reader, name string, opts ReadOptions) (*Table, ReadStats, error) {
	var stats ReadStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, stats, apperrors.NewParsingError(fmt.Sprintf("%s is empty", name), err)
	}
	if err != nil {
		return nil, stats, apperrors.NewParsingError(fmt.Sprintf("read header of %s", name), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := NewTable(name, header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if opts.SkipMalformed && stderrors.As(err, &parseErr) {
				stats.Skipped++
				if opts.Logger != nil {
					opts.Logger.Debug("skipping malformed row", slog.String("source", name), slog.Int("line", parseErr.Line))
				}
				continue
			}
			return nil, stats, apperrors.NewParsingError(fmt.Sprintf("read %s", name), err)
		}

		if len(record) > len(header) {
			if opts.SkipMalformed {
				stats.Skipped++
				continue
			}
			line, _ := reader.FieldPos(0)
			return nil, stats, apperrors.NewParsingError(
				fmt.Sprintf("%s line %d: expected %d fields, got %d", name, line, len(header), len(record)), nil)
		}
		table.Append(record...)
	}

	stats.Rows = table.Len()
	if opts.Logger != nil && stats.Skipped > 0 {
		opts.Logger.Warn("skipped malformed rows",
			slog.String("source", name),
			slog.Int("skipped", stats.Skipped),
			slog.Int("rows", stats.Rows))
	}
	return table, stats, nil
}
