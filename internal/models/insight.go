package models

// FindingSeverity enum
type FindingSeverity string

const (
	SeverityLow    FindingSeverity = "low"
	SeverityMedium FindingSeverity = "medium"
	SeverityHigh   FindingSeverity = "high"
)

// Finding is one observation extracted from a report
type Finding struct {
	Severity FindingSeverity `json:"severity" validate:"required,oneof=low medium high"`
	Text     string          `json:"text" validate:"required"`
}

// MedicalTerm explains a term found in a report
type MedicalTerm struct {
	Term       string `json:"term" validate:"required"`
	Definition string `json:"definition" validate:"required"`
}

// AIReportAnalysis is the structured result of report analysis
type AIReportAnalysis struct {
	Summary         string        `json:"summary" validate:"required"`
	Findings        []Finding     `json:"findings" validate:"dive"`
	Recommendations []string      `json:"recommendations" validate:"dive,required"`
	MedicalTerms    []MedicalTerm `json:"medicalTerms" validate:"dive"`
}

// InsightType enum
type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
	InsightSuccess InsightType = "success"
)

// HealthInsight is one predictive insight card
type HealthInsight struct {
	Type        InsightType `json:"type" validate:"required,oneof=warning info success"`
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Score       *float64    `json:"score,omitempty"`
}

// ARScanResult is the medicine identification result
type ARScanResult struct {
	Name        string  `json:"name" validate:"required"`
	Usage       string  `json:"usage" validate:"required"`
	SideEffects string  `json:"sideEffects" validate:"required"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// VitalStats summarizes biometrics fed to insight generation
type VitalStats struct {
	HeartRate  int     `json:"hr"`
	SleepHours float64 `json:"sleep"`
	Steps      int     `json:"steps"`
}
