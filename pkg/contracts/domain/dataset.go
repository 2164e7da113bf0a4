package domain

// DatasetInfo describes a produced output file.
type DatasetInfo struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Year    int      `json:"year,omitempty"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// StepSummary is the per-step outcome of a pipeline run.
type StepSummary struct {
	StepID      string   `json:"step_id"`
	RowsRead    int      `json:"rows_read"`
	RowsWritten int      `json:"rows_written"`
	Files       []string `json:"files"`
}
