package api

import "encoding/json"

// QueryRequest represents the request body for the AI query endpoint
type QueryRequest struct {
	Question      string `json:"question"`
	ModelProvider string `json:"model_provider"`
	UserID        int    `json:"user_id"`
	SessionID     string `json:"session_id"`
}

// QueryResponse represents the answer returned by the AI agent
type QueryResponse struct {
	Answer string `json:"answer"`
}

// SessionSummary is one entry in the session catalogue
type SessionSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"`
}

// SessionsResponse wraps the session catalogue
type SessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// Message is a single chat message as stored by the backend
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesResponse wraps the ordered message history of a session
type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

// Trend describes a backend-precomputed month-over-month trend.
// Direction, percent and color are opaque display values, never recomputed here.
type Trend struct {
	Direction string  `json:"direction"` // up | down | flat
	ChangePct float64 `json:"change_pct"`
	Color     string  `json:"color"` // green | red | gray
}

// ResourceCost is a per-resource cost line nested under a service
type ResourceCost struct {
	ResourceName    string    `json:"resource_name"`
	ResourceID      string    `json:"resource_id"`
	CompartmentName string    `json:"compartment"`
	Months          []float64 `json:"months"`
	Total           float64   `json:"total"`
}

// ServiceCost is a per-service cost row, optionally nested under a compartment
type ServiceCost struct {
	Service string    `json:"service"`
	Months  []float64 `json:"months"`
	Trend
	PctOfCompartment float64        `json:"pct_of_compartment,omitempty"`
	PctOfTotal       float64        `json:"pct_of_total,omitempty"`
	TopResources     []ResourceCost `json:"top_resources,omitempty"`
}

// CompartmentCost is a per-compartment cost row with its services breakdown
type CompartmentCost struct {
	CompartmentName string    `json:"compartment_name"`
	CompartmentID   string    `json:"compartment_id"`
	IsDeleted       bool      `json:"is_deleted"`
	Months          []float64 `json:"months"`
	Trend
	Services []ServiceCost `json:"services,omitempty"`
}

// CostDriver is one of the most expensive individual resources
type CostDriver struct {
	ResourceName    string  `json:"resource_name"`
	ResourceID      string  `json:"resource_id"`
	Service         string  `json:"service"`
	CompartmentName string  `json:"compartment_name"`
	Cost            float64 `json:"cost"`
}

// CostTotals is the aggregate row across all compartments
type CostTotals struct {
	Months []float64 `json:"months"`
	Trend
}

// CostMetadata carries the shared month labels for all months arrays
type CostMetadata struct {
	MonthNames  []string `json:"month_names"`
	GeneratedAt string   `json:"generated_at"`
}

// DetailedCosts is the full costs-detail page payload
type DetailedCosts struct {
	Compartments    []CompartmentCost `json:"compartments"`
	ServicesSummary []ServiceCost     `json:"services_summary"`
	TopCostDrivers  []CostDriver      `json:"top_cost_drivers"`
	Totals          *CostTotals       `json:"totals"`
	Metadata        CostMetadata      `json:"metadata"`
}

// NamedCost is a name/cost pair used in overview top lists
type NamedCost struct {
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	Percentage float64 `json:"percentage,omitempty"`
}

// CostOverview summarizes the current billing period
type CostOverview struct {
	TotalCost float64 `json:"total_cost"`
	Currency  string  `json:"currency"`
	Period    struct {
		Label string `json:"label"`
	} `json:"period"`
	CurrentMTD          float64     `json:"current_mtd"`
	SamePeriodLastMonth float64     `json:"same_period_last_month"`
	MTDChangePct        float64     `json:"mtd_change_pct"`
	MTDTrend            string      `json:"mtd_trend"`
	CurrentDay          int         `json:"current_day"`
	CurrentMonthName    string      `json:"current_month_name"`
	TopCompartments     []NamedCost `json:"top_compartments"`
	TopServices         []NamedCost `json:"top_services"`
}

// MonthTotal is one labelled month in the trend card
type MonthTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// CostTrend covers the three most recent complete months plus MTD
type CostTrend struct {
	CompleteMonths          []MonthTotal `json:"complete_months"`
	CompleteMonthsTrend     string       `json:"complete_months_trend"`
	CompleteMonthsChangePct float64      `json:"complete_months_change_pct"`
	CurrentMTD              float64      `json:"current_mtd"`
	CurrentMonthName        string       `json:"current_month_name"`
}

// ResourceInventory counts discovered resources by state
type ResourceInventory struct {
	TotalInstances   int `json:"total_instances"`
	RunningInstances int `json:"running_instances"`
	StoppedInstances int `json:"stopped_instances"`
	BlockVolumes     int `json:"block_volumes"`
	Compartments     int `json:"compartments"`
}

// TopRecommendation is a condensed recommendation shown on the dashboard
type TopRecommendation struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Savings  string `json:"savings"`
}

// OptimizationSummary aggregates recommendation counts and savings
type OptimizationSummary struct {
	TotalRecommendations   int                 `json:"total_recommendations"`
	HighSeverity           int                 `json:"high_severity"`
	MediumSeverity         int                 `json:"medium_severity"`
	LowSeverity            int                 `json:"low_severity"`
	PotentialAnnualSavings float64             `json:"potential_annual_savings"`
	TopRecommendations     []TopRecommendation `json:"top_recommendations"`
}

// DashboardData is the full dashboard page payload
type DashboardData struct {
	CostOverview        *CostOverview        `json:"cost_overview"`
	CostTrend           *CostTrend           `json:"cost_trend"`
	ResourceInventory   *ResourceInventory   `json:"resource_inventory"`
	OptimizationSummary *OptimizationSummary `json:"optimization_summary"`
	Metadata            CostMetadata         `json:"metadata"`
}

// Recommendation is a single insight, recommendation or quick win.
// Title, description and action may contain markdown (including tables).
type Recommendation struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Action           string          `json:"action"`
	Severity         string          `json:"severity"` // high | medium | low
	PotentialSavings float64         `json:"potential_savings,omitempty"`
	Details          json.RawMessage `json:"details,omitempty"` // drill-down resource records
}

// RecommendationsSummary carries the section counts
type RecommendationsSummary struct {
	TotalInsights        int `json:"total_insights"`
	TotalRecommendations int `json:"total_recommendations"`
	TotalQuickWins       int `json:"total_quick_wins"`
}

// RecommendationsData is the full recommendations page payload
type RecommendationsData struct {
	Insights              []Recommendation        `json:"insights"`
	Recommendations       []Recommendation        `json:"recommendations"`
	QuickWins             []Recommendation        `json:"quick_wins"`
	Summary               *RecommendationsSummary `json:"summary"`
	TotalPotentialSavings float64                 `json:"total_potential_savings"`
	Narrative             string                  `json:"ai_narrative,omitempty"`
	Error                 string                  `json:"error,omitempty"`
}

// SyncStats summarizes a completed backend refresh job
type SyncStats struct {
	TotalMetricsSaved   int `json:"total_metrics_saved,omitempty"`
	TotalResourcesSaved int `json:"total_resources_saved,omitempty"`
	ActiveResources     int `json:"active_resources,omitempty"`
}

// SyncResponse wraps the refresh job result
type SyncResponse struct {
	Status string    `json:"status"`
	Stats  SyncStats `json:"stats"`
}

// OCIConfig holds provider credentials for the multipart config upload
type OCIConfig struct {
	Email          string
	TenancyOCID    string
	UserOCID       string
	Fingerprint    string
	Region         string
	PrivateKeyPath string
}

// HealthResponse is the backend health probe payload
type HealthResponse struct {
	Status string `json:"status"`
}

// errorDetail is the JSON error body shape used by the backend
type errorDetail struct {
	Detail string `json:"detail"`
}
