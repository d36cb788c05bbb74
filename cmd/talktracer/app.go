package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	migrate "github.com/rubenv/sql-migrate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/talk-tracer/internal/adapter/repository"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/cache"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/database"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/media"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/search"
	"github.com/johnquangdev/talk-tracer/internal/infrastructure/storage"
	"github.com/johnquangdev/talk-tracer/internal/usecase/nlp"
	"github.com/johnquangdev/talk-tracer/internal/usecase/pipeline"
	pkgai "github.com/johnquangdev/talk-tracer/pkg/ai"
	"github.com/johnquangdev/talk-tracer/pkg/config"
)

// runLocker is the per-meeting lock shared by the orchestrator and the API
type runLocker interface {
	pipeline.Locker
	Held(ctx context.Context, key string) (bool, error)
}

// app holds every long-lived client built from configuration
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	mongo    *mongo.Client
	db       *gorm.DB
	redis    *redis.Client
	memStore *cache.MemoryStore

	registry     *prometheus.Registry
	meetings     *repository.MeetingRepository
	runs         *repository.RunRepository
	blobs        *storage.MinIOClient
	index        *search.ElasticIndex
	locker       runLocker
	orchestrator *pipeline.Orchestrator
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newApp connects every store and builds the stage chain
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	ready := false
	defer func() {
		if !ready {
			a.Close(context.WithoutCancel(ctx))
		}
	}()

	var err error

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	logger.Info("📦 Connecting to MongoDB...")
	a.mongo, err = database.NewMongoClient(ctx, &cfg.Mongo)
	if err != nil {
		return nil, err
	}
	mdb := a.mongo.Database(cfg.Mongo.Database)
	a.meetings = repository.NewMeetingRepository(mdb, cfg.Mongo.Collection)
	audits := repository.NewAuditRepository(mdb, cfg.Mongo.AuditCollection)

	if cfg.Database.Enabled {
		logger.Info("📦 Connecting to run history database...")
		a.db, err = database.NewPostgresDB(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if _, err = database.Migrate(a.db, migrate.Up); err != nil {
				return nil, err
			}
		}
		a.runs = repository.NewRunRepository(a.db)
	} else {
		logger.Info("🔄 Run history disabled, runs are only logged")
	}

	if cfg.Redis.Enabled {
		logger.Info("📦 Connecting to Redis...")
		a.redis, err = cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.locker = cache.NewRedisLocker(a.redis)
	} else {
		a.memStore = cache.NewMemoryStore()
		a.locker = cache.NewMemoryLocker(a.memStore)
	}

	logger.Info("🪣 Connecting to MinIO...")
	a.blobs, err = storage.NewMinIOClient(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}

	a.index, err = search.NewElasticIndex(&cfg.Elasticsearch)
	if err != nil {
		return nil, err
	}

	translator, err := pkgai.NewGoogleTranslator(ctx, cfg.Translate.APIKey)
	if err != nil {
		return nil, err
	}

	ffmpeg := media.NewFFmpeg(cfg.Pipeline.FFmpegPath, cfg.Pipeline.FFprobePath, os.TempDir())
	if !ffmpeg.Available() {
		logger.Warn("⚠️ ffmpeg/ffprobe not found, transcription will fail",
			zap.String("ffmpeg", cfg.Pipeline.FFmpegPath),
			zap.String("ffprobe", cfg.Pipeline.FFprobePath),
		)
	}

	metrics := pipeline.NewMetrics(a.registry)
	deps := pipeline.Deps{
		Meetings: a.meetings,
		Auditor:  pipeline.NewAuditor(audits, logger),
		Metrics:  metrics,
		Logger:   logger,
	}
	annotator := nlp.NewProseAnnotator()
	stages := pipeline.BuildStages(deps, pipeline.Components{
		Blobs:      a.blobs,
		Media:      ffmpeg,
		Recognizer: pkgai.NewAssemblyAIRecognizer(&cfg.Assembly),
		Annotator:  annotator,
		Scorer:     nlp.NewVaderScorer(),
		Summarizer: pkgai.NewGroqClient(&cfg.Groq),
		Translator: translator,
		Index:      a.index,
	}, pipeline.StageOptions{
		SegmentDuration:  cfg.SegmentDuration(),
		RecognizeTimeout: cfg.Pipeline.RecognizeTimeout,
		TargetLanguages:  cfg.Pipeline.TargetLanguages,
		DetectLanguage:   cfg.Pipeline.DetectLanguage,
	})

	opts := []pipeline.Option{
		pipeline.WithLocker(a.locker),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logger),
	}
	if a.runs != nil {
		opts = append(opts, pipeline.WithRecorder(a.runs))
	}
	a.orchestrator = pipeline.NewOrchestrator(stages, pipeline.Policy{
		RunTimeout:   cfg.Pipeline.RunTimeout,
		StageTimeout: cfg.Pipeline.StageTimeout,
		StageRetries: cfg.Pipeline.StageRetries,
		RetryBackoff: cfg.Pipeline.RetryBackoff,
		LockTTL:      cfg.Pipeline.LockTTL,
	}, opts...)

	ready = true
	logger.Info("✅ Pipeline ready", zap.Strings("stages", a.orchestrator.StageNames()))
	return a, nil
}

// Close releases every connection that was opened
func (a *app) Close(ctx context.Context) {
	if a.memStore != nil {
		a.memStore.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("⚠️ Failed to close Redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.CloseDB(a.db); err != nil {
			a.logger.Warn("⚠️ Failed to close database", zap.Error(err))
		}
	}
	if a.mongo != nil {
		if err := database.CloseMongo(ctx, a.mongo); err != nil {
			a.logger.Warn("⚠️ Failed to close MongoDB", zap.Error(err))
		}
	}
}
