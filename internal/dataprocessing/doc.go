// Package dataprocessing provides the table engine and the transformations
// that turn the raw life expectancy, GDP, health expenditure and COVID
// sources into the combined per-year datasets.
//
// # Architecture
//
// The package is organized into three layers:
//
// 1. Table: an ordered string-celled dataset with CSV parsing, projection,
// filtering, melt and inner join.
// 2. Reshapers: LifeExpectancyReshaper and MeltHealthExpenditure produce
// typed records from wide sources.
// 3. Combiners: CombineHealthcare, JoinGDPLifeExpectancy and
// JoinGDPHealthcare join the prepared datasets on (Country, Year).
//
// # Usage
//
// Reshaping the life expectancy source:
//
//	wide, _, err := dataprocessing.ReadCSV(path, dataprocessing.ReadOptions{})
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.NewLifeExpectancyReshaper(dataprocessing.LifeExpectancyOptions{}).Reshape(wide)
//
// # Data Flow
//
//	wide CSV → Melt → classify + clean → de-duplicate → pivot → per-year partitions
//
// # Missing Values
//
// An empty cell is a missing value. ParseNumber treats "..", "NaN" and
// unparsable cells as missing too, and FormatOptional writes nil back as
// an empty cell.
package dataprocessing
