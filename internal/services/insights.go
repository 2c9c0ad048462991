package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/utils"
)

// Defaults for biometrics the app has no sensor for
const (
	DefaultHeartRate  = 72
	DefaultSleepHours = 6.5
	DefaultSteps      = 8000
)

// VitalsSource provides the stored heart-rate series
type VitalsSource interface {
	Vitals(ctx context.Context) ([]models.VitalSample, error)
}

// FallbackInsights is returned when insights cannot be generated
func FallbackInsights() []models.HealthInsight {
	return []models.HealthInsight{
		{Type: models.InsightInfo, Title: "System Calibrating", Description: "Gathering more biometric data."},
	}
}

// InsightGenerator produces predictive insight cards from biometrics
type InsightGenerator struct {
	vitals VitalsSource
	ai     Collaboration
}

// NewInsightGenerator creates a new InsightGenerator
func NewInsightGenerator(vitals VitalsSource, ai Collaboration) *InsightGenerator {
	return &InsightGenerator{vitals: vitals, ai: ai}
}

// CurrentStats reads the latest heart rate from the stored series. Sleep and
// steps are fixed.
func (g *InsightGenerator) CurrentStats(ctx context.Context) (models.VitalStats, error) {
	stats := models.VitalStats{HeartRate: DefaultHeartRate, SleepHours: DefaultSleepHours, Steps: DefaultSteps}

	series, err := g.vitals.Vitals(ctx)
	if err != nil {
		return stats, err
	}
	if n := len(series); n > 0 {
		stats.HeartRate = int(math.Round(series[n-1].Value))
	}
	return stats, nil
}

// Generate asks for insights on stats
func (g *InsightGenerator) Generate(ctx context.Context, stats models.VitalStats) []models.HealthInsight {
	prompt := fmt.Sprintf(`Based on vitals (HR %d, Sleep %gh, Steps %d), generate 2 futuristic insights JSON: [{"type": "warning"|"success", "title": "", "description": ""}]`,
		stats.HeartRate, stats.SleepHours, stats.Steps)

	result, _ := structured(ctx, g.ai, genai.Request{Task: TaskInsights, Prompt: prompt},
		func(r *[]models.HealthInsight) error {
			if len(*r) == 0 {
				return errors.New("no insights returned")
			}
			return utils.ValidateSlice(*r)
		},
		FallbackInsights,
	)
	return result
}

// ForCurrentVitals generates insights from the stored series. A store failure
// falls back to the default stats.
func (g *InsightGenerator) ForCurrentVitals(ctx context.Context) ([]models.HealthInsight, models.VitalStats) {
	stats, err := g.CurrentStats(ctx)
	if err != nil {
		g.ai.logger().WithComponent("insights").WithError(err).Warn("Failed to read vitals, using default stats")
	}
	return g.Generate(ctx, stats), stats
}
