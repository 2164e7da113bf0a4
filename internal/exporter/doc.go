// Package exporter writes prepared datasets to disk.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing with headers, appends, optional UTF-8 BOM and
// replace-on-success rewrites so a failed run never leaves a half written file.
//
// YearlyExporter: Writes one file per year through a bounded errgroup.
//
// WorkbookExporter: Bundles several datasets into a single .xlsx file, one
// sheet per dataset.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(logger)
//	yearly := exporter.NewYearlyExporter(writer, 4, logger)
//
//	infos, err := yearly.ExportByYear(ctx, partitions, paths.LifeExpectancyByYear)
package exporter
