// Package services implements the dashboard's service screens. Flows backed by
// the text-generation collaborator never fail: a bad or missing answer is
// replaced by a fixed fallback result.
package services

import (
	"context"
	"time"

	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/metrics"
)

// Task names used in logs and metrics
const (
	TaskReportAnalysis = "report_analysis"
	TaskInsights       = "insights"
	TaskIdentify       = "identify_medicine"
	TaskAssistant      = "assistant"
)

// Collaboration bundles what every AI-backed flow needs
type Collaboration struct {
	Collaborator genai.Collaborator
	Log          *logger.Logger
	Metrics      *metrics.Collector
}

func (c Collaboration) logger() *logger.Logger {
	if c.Log == nil {
		return logger.Discard()
	}
	return c.Log
}

func (c Collaboration) record(task string, fallback bool, err error, started time.Time) {
	c.logger().Collaborator(task, fallback, err)
	if c.Metrics != nil {
		c.Metrics.RecordCollaboratorCall(task, fallback, time.Since(started))
	}
}

// structured asks for a JSON answer, decodes it into T and runs check on the
// result. Any failure along the way yields fallback().
func structured[T any](ctx context.Context, c Collaboration, req genai.Request, check func(*T) error, fallback func() T) (T, bool) {
	started := time.Now()
	req.JSON = true

	if c.Collaborator == nil {
		c.record(req.Task, true, genai.ErrUnavailable, started)
		return fallback(), true
	}

	raw, err := c.Collaborator.Generate(ctx, req)
	if err != nil {
		c.record(req.Task, true, err, started)
		return fallback(), true
	}

	var result T
	if err := genai.DecodeJSON(raw, &result); err != nil {
		c.record(req.Task, true, err, started)
		return fallback(), true
	}
	if err := check(&result); err != nil {
		c.record(req.Task, true, err, started)
		return fallback(), true
	}

	c.record(req.Task, false, nil, started)
	return result, false
}
