package routes

import (
	"context"

	"arogya-app-server/internal/config"
	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/handlers"
	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/metrics"
	"arogya-app-server/internal/services"
	"arogya-app-server/internal/session"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/vitals"
)

// NewDependencies wires the store, session router, sampler and services.
// ctx bounds the background work. Extra sampler options are applied after the
// configured interval and range.
func NewDependencies(ctx context.Context, cfg *config.Config, st *store.Store, collaborator genai.Collaborator, m *metrics.Collector, log *logger.Logger, samplerOpts ...vitals.Option) *Dependencies {
	ai := services.Collaboration{Collaborator: collaborator, Log: log, Metrics: m}

	opts := append([]vitals.Option{
		vitals.WithInterval(cfg.Vitals.Interval),
		vitals.WithRange(cfg.Vitals.Min, cfg.Vitals.Max),
		vitals.WithLogger(log),
		vitals.WithMetrics(m),
	}, samplerOpts...)
	sampler := vitals.NewSampler(st, opts...)

	assistant := services.NewAssistant(ai)
	teleconsult := services.NewTeleconsult(cfg.Simulation.ReplyDelay, nil)
	emergency := services.NewEmergency(cfg.SOS.Ticks, cfg.SOS.Interval, services.NewNotificationDispatcher(log), nil, m, log)
	identifier := services.NewMedicineIdentifier(ai)

	return &Dependencies{
		Store:       st,
		Router:      session.NewRouter(st, log),
		Sampler:     sampler,
		Dashboard:   handlers.NewDashboard(ctx, sampler, assistant, teleconsult, emergency, log),
		Finder:      services.NewDoctorFinder(st),
		Medications: services.NewMedications(st),
		Uploader:    services.NewReportUploader(st, cfg.Simulation.UploadDelay),
		Analyzer:    services.NewReportAnalyzer(st, ai),
		Insights:    services.NewInsightGenerator(st, ai),
		Identifier:  identifier,
		Scanner:     services.NewScanner(identifier, cfg.Simulation.ScanDelay, nil),
		Assistant:   assistant,
		Teleconsult: teleconsult,
		Emergency:   emergency,
		Metrics:     m,
	}
}
