package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/utils"
)

// PendingReportContent is stored for uploads until they are analyzed
const PendingReportContent = "Uploaded document content analysis pending. Please use the 'Analyze with AI' button to extract medical insights from this document."

// ReportStore is the slice of the local store report flows use
type ReportStore interface {
	Report(ctx context.Context, id string) (*models.MedicalReport, error)
	AddReport(ctx context.Context, r models.MedicalReport) ([]models.MedicalReport, error)
}

// FallbackAnalysis is returned when a report cannot be analyzed
func FallbackAnalysis() models.AIReportAnalysis {
	return models.AIReportAnalysis{
		Summary:         "Unable to process report details at this time.",
		Findings:        []models.Finding{},
		Recommendations: []string{"Consult your doctor for interpretation."},
		MedicalTerms:    []models.MedicalTerm{},
	}
}

// ReportAnalyzer turns report text into summary, findings and a glossary
type ReportAnalyzer struct {
	reports ReportStore
	ai      Collaboration
}

// NewReportAnalyzer creates a new ReportAnalyzer
func NewReportAnalyzer(reports ReportStore, ai Collaboration) *ReportAnalyzer {
	return &ReportAnalyzer{reports: reports, ai: ai}
}

// AnalyzeReport analyzes a stored report. Only store failures are returned.
func (a *ReportAnalyzer) AnalyzeReport(ctx context.Context, id string) (models.AIReportAnalysis, error) {
	report, err := a.reports.Report(ctx, id)
	if err != nil {
		return models.AIReportAnalysis{}, err
	}
	return a.Analyze(ctx, report.Content), nil
}

// Analyze analyzes free text
func (a *ReportAnalyzer) Analyze(ctx context.Context, text string) models.AIReportAnalysis {
	prompt := fmt.Sprintf(`Analyze this medical text and return a JSON object.
Text: %q

Schema required:
{
  "summary": "Brief 2 sentence summary",
  "findings": [{"severity": "high" | "medium" | "low", "text": "Finding description"}],
  "recommendations": ["Actionable advice 1", "Actionable advice 2"],
  "medicalTerms": [{"term": "Complex Term", "definition": "Simple definition"}]
}`, text)

	result, _ := structured(ctx, a.ai, genai.Request{Task: TaskReportAnalysis, Prompt: prompt},
		func(r *models.AIReportAnalysis) error {
			if r.Findings == nil {
				r.Findings = []models.Finding{}
			}
			if r.Recommendations == nil {
				r.Recommendations = []string{}
			}
			if r.MedicalTerms == nil {
				r.MedicalTerms = []models.MedicalTerm{}
			}
			return utils.Validate(r)
		},
		FallbackAnalysis,
	)
	return result
}

// ReportUploader records an uploaded document as a pending report
type ReportUploader struct {
	reports ReportStore
	delay   time.Duration
	now     func() time.Time
}

// NewReportUploader creates an uploader that waits delay before storing,
// standing in for the transfer time
func NewReportUploader(reports ReportStore, delay time.Duration) *ReportUploader {
	return &ReportUploader{reports: reports, delay: delay, now: time.Now}
}

// Upload stores a report named after fileName and returns it
func (u *ReportUploader) Upload(ctx context.Context, fileName string) (models.MedicalReport, error) {
	if u.delay > 0 {
		timer := time.NewTimer(u.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return models.MedicalReport{}, ctx.Err()
		case <-timer.C:
		}
	}

	report := models.MedicalReport{
		ID:       uuid.NewString(),
		Title:    reportTitle(fileName),
		Date:     u.now().UTC().Format(DateLayout),
		Hospital: "External Upload",
		Type:     "PDF",
		Content:  PendingReportContent,
	}
	if _, err := u.reports.AddReport(ctx, report); err != nil {
		return models.MedicalReport{}, err
	}
	return report, nil
}

// reportTitle keeps the file name up to its first dot
func reportTitle(fileName string) string {
	base := filepath.Base(strings.TrimSpace(fileName))
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		return "Uploaded Report"
	}
	return base
}
