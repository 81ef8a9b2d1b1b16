package main

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/medjoblist/pipeline/internal/adapters"
	"github.com/medjoblist/pipeline/internal/announcer"
	"github.com/medjoblist/pipeline/internal/classifier"
	"github.com/medjoblist/pipeline/internal/clients/gemini"
	"github.com/medjoblist/pipeline/internal/config"
	"github.com/medjoblist/pipeline/internal/logger"
	"github.com/medjoblist/pipeline/internal/metrics"
	"github.com/medjoblist/pipeline/internal/models"
	"github.com/medjoblist/pipeline/internal/normalizer"
	"github.com/medjoblist/pipeline/internal/notifier"
	"github.com/medjoblist/pipeline/internal/pipeline"
	"github.com/medjoblist/pipeline/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// app owns the wired-up object graph shared by the run and schedule
// commands.
type app struct {
	cfg       *config.Config
	dbContext *repositories.DbContext
	employers *repositories.Employers
	runner    *pipeline.Runner
}

func newApp(ctx context.Context) (*app, error) {

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)

	if cfg.Pipeline.MetricsAddr != "" {
		metrics.StartMetricsServer(cfg.Pipeline.MetricsAddr)
	}

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		return nil, err
	}

	if err := dbContext.Migrate(); err != nil {
		return nil, err
	}

	employers := repositories.NewEmployersRepository(dbContext.DB)
	jobs := repositories.NewJobsRepository(dbContext.DB)

	if err := employers.Seed(ctx, employerModels(cfg.Employers)); err != nil {
		return nil, err
	}

	aiClient, err := gemini.NewClient(ctx, cfg.Pipeline.AIKey, aiModel(cfg.Pipeline.AiModel))
	if err != nil {
		return nil, err
	}
	aiClient.SetMinuteRateLimit(cfg.Pipeline.AiMaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.Pipeline.AiMaxRequestsPerDay)

	gate := classifier.NewGate(aiClient, jobs, cfg.Pipeline.AiCostPerCallUSD)
	gate.SetBatchSize(cfg.Pipeline.ClassifyBatchSize)
	gate.SetConcurrency(cfg.Pipeline.ClassifyConcurrency)

	fetcher := adapters.NewFetcher()
	if cfg.Pipeline.SourceMaxRequestsPerSecond > 0 {
		fetcher.SetRateLimit(cfg.Pipeline.SourceMaxRequestsPerSecond)
	}
	newAdapter := func(employer models.Employer) (adapters.SourceAdapter, error) {
		return adapters.NewForEmployer(employer, fetcher)
	}

	announce := announcer.New(cfg.Announcer.Endpoints, cfg.Announcer.Host, cfg.Announcer.Key)
	announce.SetBatchSize(cfg.Announcer.BatchSize)
	if cfg.Announcer.MaxBatchesPerSecond > 0 {
		announce.SetRateLimit(cfg.Announcer.MaxBatchesPerSecond)
	}

	bus := EventBus.New()

	var alerts notifier.Notifier
	if cfg.Notifier.Enabled() {
		telegram, err := notifier.NewTelegramNotifier(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatID)
		if err != nil {
			log.Errorf("can't create telegram notifier, alerts disabled: %v", err)
		} else {
			alerts = telegram
		}
	}
	if _, err := notifier.NewSubscriber(bus, alerts); err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(employers, newAdapter, normalizer.NewResolver(jobs),
		gate, announce, bus, cfg.Logger.LogDir)

	return &app{
		cfg:       cfg,
		dbContext: dbContext,
		employers: employers,
		runner:    runner,
	}, nil
}

func (a *app) Close() {
	if err := a.dbContext.Close(); err != nil {
		log.Errorf("failed to close db: %v", err)
	}
	logger.Cleanup()
}

func employerModels(configs []config.EmployerConfig) []models.Employer {
	employers := make([]models.Employer, 0, len(configs))
	for _, cfg := range configs {
		employers = append(employers, cfg.ToModel())
	}
	return employers
}

func aiModel(name string) gemini.Model {
	switch gemini.Model(name) {
	case gemini.Model15Flash, gemini.Model15Flash8b, gemini.Model15Pro:
		return gemini.Model(name)
	default:
		return gemini.Model15Flash
	}
}
