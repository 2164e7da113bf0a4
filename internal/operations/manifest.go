package operations

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"healthstats/pkg/contracts/domain"
)

// RunManifest is the on-disk record of the most recent pipeline run. The
// read API serves it so clients can tell which outputs are current.
type RunManifest struct {
	ID          string    `json:"id"`
	OperationID string    `json:"operation_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Duration    string    `json:"duration"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`

	// CompletedSteps counts the steps that finished. Partial marks a failed
	// run that still produced some outputs, as -continue-on-error allows.
	CompletedSteps int  `json:"completed_steps"`
	Partial        bool `json:"partial,omitempty"`

	Steps     []StageExecution     `json:"steps"`
	Summaries []domain.StepSummary `json:"summaries"`
	Datasets  []domain.DatasetInfo `json:"datasets"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID   string                 `json:"stage_id"`
	StageName string                 `json:"stage_name"`
	StartTime *time.Time             `json:"start_time,omitempty"`
	EndTime   *time.Time             `json:"end_time,omitempty"`
	Duration  string                 `json:"duration"`
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewRunManifest captures a finished operation. Steps are listed in the
// order they started; steps that never ran follow, sorted by ID.
func NewRunManifest(resp *OperationResponse) *RunManifest {
	end := time.Now()
	m := &RunManifest{
		ID:          fmt.Sprintf("manifest-%d", end.Unix()),
		OperationID: resp.ID,
		StartTime:   end.Add(-resp.Duration),
		EndTime:     end,
		Duration:    resp.Duration.String(),
		Status:      string(resp.Status),
		Error:       resp.Error,
		Summaries:   resp.Summaries,

		CompletedSteps: resp.CompletedSteps,
		Partial:        resp.HasFailures && resp.CompletedSteps > 0,
		Datasets:    resp.Datasets,
	}

	for _, s := range resp.Steps {
		s.mu.RLock()
		exec := StageExecution{
			StageID:   s.ID,
			StageName: s.Name,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Status:    string(s.Status),
			Message:   s.Message,
		}
		if s.Error != nil {
			exec.Error = s.Error.Error()
		}
		if len(s.Metadata) > 0 {
			exec.Metadata = make(map[string]interface{}, len(s.Metadata))
			for k, v := range s.Metadata {
				exec.Metadata[k] = v
			}
		}
		if s.StartTime != nil && s.EndTime != nil {
			exec.Duration = s.EndTime.Sub(*s.StartTime).String()
		}
		s.mu.RUnlock()
		m.Steps = append(m.Steps, exec)
	}

	sort.SliceStable(m.Steps, func(i, j int) bool {
		a, b := m.Steps[i], m.Steps[j]
		switch {
		case a.StartTime != nil && b.StartTime != nil && !a.StartTime.Equal(*b.StartTime):
			return a.StartTime.Before(*b.StartTime)
		case a.StartTime != nil && b.StartTime != nil:
		case a.StartTime != nil:
			return true
		case b.StartTime != nil:
			return false
		}
		return a.StageID < b.StageID
	})
	return m
}

// IsStageCompleted checks if a stage has been completed
func (m *RunManifest) IsStageCompleted(stageID string) bool {
	for _, stage := range m.Steps {
		if stage.StageID == stageID && stage.Status == string(StepStatusCompleted) {
			return true
		}
	}
	return false
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &manifest, nil
}

// ScanDatasets lists the CSV and workbook files under root. Paths are
// relative to root and use forward slashes.
func ScanDatasets(root string) ([]domain.DatasetInfo, error) {
	var infos []domain.DatasetInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".csv" && ext != ".xlsx" && ext != ".txt" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info := domain.DatasetInfo{
			Name: strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Path: filepath.ToSlash(rel),
		}
		if year, ok := trailingYear(info.Name); ok {
			info.Year = year
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan datasets: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// trailingYear reads a "-YYYY" suffix from a partition file name
func trailingYear(name string) (int, bool) {
	i := strings.LastIndex(name, "-")
	if i < 0 || len(name)-i-1 != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(name[i+1:])
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
