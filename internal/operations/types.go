package operations

import (
	"time"

	"healthstats/pkg/contracts/domain"
)

// operation Step identifiers
const (
	StageIDGDPCurrency       = "gdp-currency"
	StageIDLifeExpectancy    = "life-expectancy"
	StageIDGDPNormalize      = "gdp-normalize"
	StageIDHealthcare        = "healthcare"
	StageIDGDPLifeExpectancy = "gdp-life-expectancy"
	StageIDGDPHealthcare     = "gdp-healthcare"
	StageIDCovidSnapshot     = "covid-snapshot"
	StageIDWorkbook          = "workbook-export"
)

// operation Step names
const (
	StageNameGDPCurrency       = "GDP Currency Conversion"
	StageNameLifeExpectancy    = "Life Expectancy Reshape"
	StageNameGDPNormalize      = "GDP Country Normalization"
	StageNameHealthcare        = "Healthcare Expenditure Join"
	StageNameGDPLifeExpectancy = "GDP and Life Expectancy Join"
	StageNameGDPHealthcare     = "GDP and Healthcare Join"
	StageNameCovidSnapshot     = "COVID Snapshot"
	StageNameWorkbook          = "Workbook Export"
)

// Context keys for datasets handed from one step to the next
const (
	ContextKeyLifeExpectancy = "life_expectancy"
	ContextKeyLifeByYear     = "life_expectancy_by_year"
	ContextKeyGDPEuro        = "gdp_euro"
	ContextKeyGDPNormalized  = "gdp_normalized"
	ContextKeyHealthcare     = "healthcare_by_year"
	ContextKeyWorkbookSheets = "workbook_sheets"
)

// Default timeouts
const (
	DefaultStageTimeout = 10 * time.Minute
)

// OperationRequest represents a request to execute a operation
type OperationRequest struct {
	ID string `json:"id"`
	// Step restricts the run to one step; empty runs every registered step.
	Step string `json:"step,omitempty"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID        string                `json:"id"`
	Status    OperationStatusValue  `json:"status"`
	Duration  time.Duration         `json:"duration"`
	Steps     map[string]*StepState `json:"steps"`
	Summaries []domain.StepSummary  `json:"summaries"`
	Datasets  []domain.DatasetInfo  `json:"datasets"`
	Error     string                `json:"error,omitempty"`

	CompletedSteps int  `json:"completed_steps"`
	HasFailures    bool `json:"has_failures"`
}
