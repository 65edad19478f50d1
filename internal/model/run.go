package model

// PhaseStatus represents the outcome of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// Pipeline phase names, in execution order.
const (
	PhaseLoadFX       = "fx"
	PhaseLoadSales    = "load_sales"
	PhaseLoadPurchase = "load_purchase"
	PhaseAggregate    = "aggregate"
	PhaseAnalyze      = "analyze"
	PhaseDecide       = "decide"
	PhaseProfit       = "profit"
)

// PhaseResult holds the outcome of a pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
