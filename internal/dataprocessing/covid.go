package dataprocessing

import (
	"healthstats/pkg/contracts/domain"
)

// CovidSnapshot keeps the rows of one day and the CovidSnapshotColumns.
func CovidSnapshot(t *Table, day string) (*Table, error) {
	if err := t.Require(domain.CovidSnapshotColumns...); err != nil {
		return nil, err
	}
	filtered := t.Filter(func(r Row) bool {
		return r.Get(domain.ColDay) == day
	})
	return filtered.Select(domain.CovidSnapshotColumns...)
}
