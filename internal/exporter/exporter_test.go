package exporter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"healthstats/internal/dataprocessing"
)

func sampleTable(name string) *dataprocessing.Table {
	t := dataprocessing.NewTable(name, []string{"Country", "Year", "Life_expectancy"})
	t.Append("Korea, Rep.", "2000", "75.5")
	t.Append("Austria", "2000", "")
	return t
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer := NewCSVWriter(nil)
	dir := t.TempDir()

	tests := []struct {
		name     string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name: "basic write with headers",
			options: WriteOptions{
				Headers: []string{"Name", "Age"},
				Records: [][]string{{"John", "25"}, {"Jane", "30"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Name,Age\nJohn,25\nJane,30\n", string(content))
			},
		},
		{
			name: "write with BOM prefix",
			options: WriteOptions{
				Headers:   []string{"Country"},
				Records:   [][]string{{"Austria"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				assert.Equal(t, "Country\nAustria\n", string(content[3:]))
			},
		},
		{
			name: "empty records",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Col1,Col2\n", string(content))
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", fmt.Sprintf("out-%d.csv", i))
			require.NoError(t, writer.WriteCSV(path, tt.options))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_ReplaceLeavesNoTemporaryFiles(t *testing.T) {
	writer := NewCSVWriter(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")

	require.NoError(t, writer.WriteTable(path, sampleTable("first")))
	require.NoError(t, writer.WriteTable(path, sampleTable("second")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "data.csv", entries[0].Name())
}

func TestCSVWriter_AppendToCSV(t *testing.T) {
	writer := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "history.csv")

	require.NoError(t, writer.WriteCSV(path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}}}))
	require.NoError(t, writer.AppendToCSV(path, [][]string{{"2"}}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n2\n", string(content))
}

func TestCSVWriter_WriteTableRoundTrip(t *testing.T) {
	writer := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "life.csv")
	table := sampleTable("life")

	require.NoError(t, writer.WriteTable(path, table))

	back, _, err := dataprocessing.ReadCSV(path, dataprocessing.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, table.Columns, back.Columns)
	assert.Equal(t, table.Rows, back.Rows)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Country,Year,Life_expectancy\n\"Korea, Rep.\",2000,75.5\n"))
}

func TestYearlyExporter_ExportByYear(t *testing.T) {
	dir := t.TempDir()
	exporter := NewYearlyExporter(NewCSVWriter(nil), 2, nil)

	tables := map[int]*dataprocessing.Table{}
	for _, year := range []int{2002, 2000, 2001} {
		tables[year] = sampleTable(fmt.Sprintf("partition-%d", year))
	}
	pathFor := func(year int) string {
		return filepath.Join(dir, fmt.Sprintf("partition-%d.csv", year))
	}

	infos, err := exporter.ExportByYear(context.Background(), tables, pathFor)
	require.NoError(t, err)
	require.Len(t, infos, 3)
	for i, year := range []int{2000, 2001, 2002} {
		assert.Equal(t, year, infos[i].Year)
		assert.Equal(t, pathFor(year), infos[i].Path)
		assert.Equal(t, 2, infos[i].Rows)
		assert.FileExists(t, pathFor(year))
	}
}

func TestYearlyExporter_CancelledContext(t *testing.T) {
	exporter := NewYearlyExporter(NewCSVWriter(nil), 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	_, err := exporter.ExportByYear(ctx, map[int]*dataprocessing.Table{2000: sampleTable("x")}, func(year int) string {
		return filepath.Join(dir, "x.csv")
	})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "x.csv"))
}

func TestWorkbookExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined", "healthstats.xlsx")
	exporter := NewWorkbookExporter(nil)

	err := exporter.Export(path, []Sheet{
		{Name: "life-expectancy", Table: sampleTable("life")},
		{Name: "gdp-life-expectancy-merged-by-country-and-year", Table: sampleTable("gdp")},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"life-expectancy", "gdp-life-expectancy-merged-by-c"}, f.GetSheetList())

	rows, err := f.GetRows("life-expectancy")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Country", "Year", "Life_expectancy"}, rows[0])
	assert.Equal(t, []string{"Korea, Rep.", "2000", "75.5"}, rows[1])
}

func TestWorkbookExporter_DuplicateSheet(t *testing.T) {
	exporter := NewWorkbookExporter(nil)
	err := exporter.Export(filepath.Join(t.TempDir(), "x.xlsx"), []Sheet{
		{Name: "a", Table: sampleTable("a")},
		{Name: "a", Table: sampleTable("b")},
	})
	require.Error(t, err)
}
