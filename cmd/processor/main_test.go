package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthstats/internal/config"
	"healthstats/internal/dataprocessing"
	"healthstats/internal/operations"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// sourcesTree writes the raw inputs for one country over 2000-2002
func sourcesTree(t *testing.T) *config.Paths {
	t.Helper()
	paths := config.NewPaths(t.TempDir())

	writeFile(t, paths.LifeExpectancyWideCSV,
		"Country Name,Country Code,Series Name,Series Code,2000 [YR2000],2001 [YR2001],2002 [YR2002]\n"+
			"Germany,DEU,\"Life expectancy at birth, total (years)\",SP.DYN.LE00.IN,78,78.5,79\n"+
			"Germany,DEU,\"Population, total\",SP.POP.TOTL,82000000,82300000,82500000\n")
	writeFile(t, paths.HealthExpenditureTXT,
		"Country Name,Country Code,Indicator Name,Indicator Code,2000,2001\n"+
			"Germany,DEU,Current health expenditure per capita,SH.XPD,2000,2100\n")
	writeFile(t, paths.GDPEuroCSV,
		"Country,Year,Income_per_Person,Total_GDP,GDP_per_Capita_Growth_(%)\n"+
			"Germany,2000,30000.0,2460000000000.0,2.9\n"+
			"Germany,2001,30500.0,2510000000000.0,1.7\n")
	writeFile(t, paths.CovidExcessDeathsCSV,
		"Entity,Code,Day,\"Cumulative excess deaths per 100,000 people (central estimate)\","+
			"\"Cumulative excess deaths per 100,000 people (95% CI, lower bound)\","+
			"\"Cumulative excess deaths per 100,000 people (95% CI, upper bound)\","+
			"\"Total confirmed deaths due to COVID-19 per 100,000 people\"\n"+
			"Germany,DEU,2024-02-15,120.5,100.1,140.2,210.0\n")
	return paths
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, body)
	return path
}

const testConfig = `
logging:
  level: warn
pipeline:
  gdp_healthcare_from_year: 2000
  gdp_healthcare_to_year: 2001
  export_workbook: true
`

func TestRunPipeline(t *testing.T) {
	paths := sourcesTree(t)
	textfile := filepath.Join(t.TempDir(), "healthstats.prom")
	cfgPath := writeConfig(t, testConfig+"telemetry:\n  metrics_textfile: "+textfile+"\n")

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfgPath, "-root", paths.DatasetsDir}, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.FileExists(t, paths.LifeExpectancyCSV)
	assert.FileExists(t, paths.GDPHealthcareByYear(2001))
	assert.FileExists(t, paths.WorkbookXLSX)

	manifest, err := operations.LoadManifestFromFile(paths.RunManifestJSON)
	require.NoError(t, err)
	assert.Equal(t, string(operations.OperationStatusCompleted), manifest.Status)
	assert.True(t, manifest.IsStageCompleted(operations.StageIDWorkbook))

	history, _, err := dataprocessing.ReadCSV(paths.RunHistoryCSV, dataprocessing.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, runHistoryHeader, history.Columns)
	require.Equal(t, 1, history.Len())
	assert.Equal(t, "completed", history.Get(0, "status"))
	assert.Equal(t, "7", history.Get(0, "steps_completed"))

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pipeline_rows_written_total")
}

func TestRunAppendsHistory(t *testing.T) {
	paths := sourcesTree(t)
	cfgPath := writeConfig(t, testConfig)
	args := []string{"-config", cfgPath, "-root", paths.DatasetsDir, "-step", operations.StageIDCovidSnapshot}

	require.Equal(t, exitOK, run(context.Background(), args, &bytes.Buffer{}))
	require.Equal(t, exitOK, run(context.Background(), args, &bytes.Buffer{}))

	history, _, err := dataprocessing.ReadCSV(paths.RunHistoryCSV, dataprocessing.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, history.Len())
	assert.NotEqual(t, history.Get(0, "run_id"), history.Get(1, "run_id"))
}

func TestRunFailureExitCode(t *testing.T) {
	paths := sourcesTree(t)
	require.NoError(t, os.Remove(paths.HealthExpenditureTXT))
	cfgPath := writeConfig(t, testConfig)

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfgPath, "-root", paths.DatasetsDir}, &stderr)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "pipeline failed")

	manifest, err := operations.LoadManifestFromFile(paths.RunManifestJSON)
	require.NoError(t, err)
	assert.Equal(t, string(operations.OperationStatusFailed), manifest.Status)
	assert.True(t, manifest.IsStageCompleted(operations.StageIDLifeExpectancy))
	assert.False(t, manifest.IsStageCompleted(operations.StageIDHealthcare))
}

func TestRunCheck(t *testing.T) {
	paths := sourcesTree(t)
	cfgPath := writeConfig(t, testConfig)
	args := []string{"-config", cfgPath, "-root", paths.DatasetsDir, "-check"}

	var stderr bytes.Buffer
	require.Equal(t, exitOK, run(context.Background(), args, &stderr), stderr.String())
	assert.NoFileExists(t, paths.RunManifestJSON)
	assert.NoFileExists(t, paths.LifeExpectancyCSV)

	writeFile(t, paths.CovidExcessDeathsCSV, "Entity,Day\nGermany,2024-02-15\n")
	stderr.Reset()
	assert.Equal(t, exitFailed, run(context.Background(), args, &stderr))
	assert.Contains(t, stderr.String(), "source check failed")
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"missing config file", []string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, exitUsage, run(context.Background(), tt.args, &stderr))
			assert.NotEmpty(t, strings.TrimSpace(stderr.String()))
		})
	}
}
