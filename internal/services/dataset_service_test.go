package services_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthstats/internal/config"
	"healthstats/internal/operations"
	"healthstats/internal/services"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// outputsTree writes a minimal set of processor outputs
func outputsTree(t *testing.T) *config.Paths {
	t.Helper()
	paths := config.NewPaths(t.TempDir())

	writeFile(t, paths.LifeExpectancyCSV, "Country,Year,Total,Life_expectancy,Population\n"+
		"Germany,2000,female,81.2,\n"+
		"Germany,2000,total,78.1,82000000.0\n"+
		"Germany,2001,total,78.4,82300000.0\n"+
		"Slovakia,2000,total,73.1,5400000.0\n")
	writeFile(t, paths.HealthcareByYear(2000), "Country,Year,Health Expenditure per Capita,Population,Total Health Expenditure\n"+
		"Germany,2000,2400.5,82000000.0,196841000000.0\n")
	writeFile(t, paths.GDPHealthcareByYear(2000), "Country,Year,Income_per_Person,Total_GDP\n"+
		"Germany,2000,40000.0,3.28e+12\n")
	writeFile(t, paths.GDPLifeExpectancyCSV, "Country,Year,Income_per_Person,Total,Life_expectancy\n"+
		"Germany,2000,40000.0,total,78.1\n"+
		"Slovakia,2000,15000.0,total,73.1\n")
	writeFile(t, paths.CovidSnapshotCSV, "Entity,Day\nGermany,2024-02-15\n")
	return paths
}

func TestDatasetServiceLifeExpectancyFilters(t *testing.T) {
	svc := services.NewDatasetService(outputsTree(t), nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter services.LifeExpectancyFilter
		count  int
	}{
		{"no filter", services.LifeExpectancyFilter{}, 4},
		{"country case-insensitive", services.LifeExpectancyFilter{Country: "germany"}, 3},
		{"year", services.LifeExpectancyFilter{Year: 2000}, 3},
		{"total", services.LifeExpectancyFilter{Total: "total"}, 3},
		{"combined", services.LifeExpectancyFilter{Country: "Germany", Year: 2000, Total: "female"}, 1},
		{"nothing matches", services.LifeExpectancyFilter{Country: "Atlantis"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.LifeExpectancy(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Rows, tt.count)
			assert.NotNil(t, resp.Rows)
		})
	}
}

func TestDatasetServiceMissingCellsAreNull(t *testing.T) {
	svc := services.NewDatasetService(outputsTree(t), nil)

	resp, err := svc.LifeExpectancy(context.Background(), services.LifeExpectancyFilter{Total: "female"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Nil(t, resp.Rows[0]["Population"])
	assert.Equal(t, 81.2, resp.Rows[0]["Life_expectancy"])
	assert.Equal(t, []string{"Country", "Year", "Total", "Life_expectancy", "Population"}, resp.Columns)
}

func TestDatasetServiceRowsAreTyped(t *testing.T) {
	svc := services.NewDatasetService(outputsTree(t), nil)

	resp, err := svc.LifeExpectancy(context.Background(), services.LifeExpectancyFilter{Country: "Slovakia"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)

	row := resp.Rows[0]
	assert.Equal(t, "Slovakia", row["Country"])
	assert.Equal(t, int64(2000), row["Year"])
	assert.Equal(t, "total", row["Total"])
	assert.Equal(t, 73.1, row["Life_expectancy"])
	assert.Equal(t, 5400000.0, row["Population"])

	body, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Country":"Slovakia","Year":2000,"Total":"total","Life_expectancy":73.1,"Population":5400000}`, string(body))
}

func TestDatasetServicePerYearTables(t *testing.T) {
	svc := services.NewDatasetService(outputsTree(t), nil)
	ctx := context.Background()

	health, err := svc.Healthcare(ctx, 2000)
	require.NoError(t, err)
	assert.Equal(t, 2000, health.Year)
	assert.Equal(t, 1, health.Count)

	gdp, err := svc.GDPHealthcare(ctx, 2000)
	require.NoError(t, err)
	assert.Equal(t, services.DatasetGDPHealthcare, gdp.Dataset)

	_, err = svc.Healthcare(ctx, 1999)
	assert.ErrorIs(t, err, services.ErrDatasetNotFound)
	_, err = svc.GDPHealthcare(ctx, 2021)
	assert.ErrorIs(t, err, services.ErrDatasetNotFound)
}

func TestDatasetServiceGDPLifeExpectancyAndCovid(t *testing.T) {
	svc := services.NewDatasetService(outputsTree(t), nil)
	ctx := context.Background()

	merged, err := svc.GDPLifeExpectancy(ctx, "slovakia")
	require.NoError(t, err)
	require.Equal(t, 1, merged.Count)
	assert.Equal(t, "Slovakia", merged.Rows[0]["Country"])

	covid, err := svc.CovidSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, covid.Count)
}

func TestDatasetServiceListDatasets(t *testing.T) {
	paths := outputsTree(t)
	svc := services.NewDatasetService(paths, nil)

	list, err := svc.ListDatasets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, list.Count)
	assert.Nil(t, list.LastRun)

	manifest := &operations.RunManifest{OperationID: "run-1", Status: string(operations.OperationStatusCompleted)}
	require.NoError(t, manifest.SaveToFile(paths.RunManifestJSON))

	list, err = svc.ListDatasets(context.Background())
	require.NoError(t, err)
	require.NotNil(t, list.LastRun)
	assert.Equal(t, "run-1", list.LastRun.OperationID)
}
