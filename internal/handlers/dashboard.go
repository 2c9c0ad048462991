package handlers

import (
	"context"

	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/services"
	"arogya-app-server/internal/vitals"
)

// Dashboard starts and stops what lives only while the dashboard is mounted
type Dashboard struct {
	ctx         context.Context
	sampler     *vitals.Sampler
	assistant   *services.Assistant
	teleconsult *services.Teleconsult
	emergency   *services.Emergency
	log         *logger.Logger
}

// NewDashboard creates a new Dashboard. ctx bounds the sampler's lifetime.
func NewDashboard(ctx context.Context, sampler *vitals.Sampler, assistant *services.Assistant, teleconsult *services.Teleconsult, emergency *services.Emergency, log *logger.Logger) *Dashboard {
	return &Dashboard{
		ctx:         ctx,
		sampler:     sampler,
		assistant:   assistant,
		teleconsult: teleconsult,
		emergency:   emergency,
		log:         log,
	}
}

// Mounted resumes the vitals feed
func (d *Dashboard) Mounted() {
	if _, err := d.sampler.Resume(d.ctx); err != nil {
		d.log.WithComponent("dashboard").WithError(err).Error("Failed to start vitals sampler")
	}
}

// Unmounted stops the feed and drops screen-local state
func (d *Dashboard) Unmounted() {
	d.sampler.Pause()
	d.assistant.Reset()
	_, _ = d.teleconsult.End()
	d.emergency.Cancel()
}
