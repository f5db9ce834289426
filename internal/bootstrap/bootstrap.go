// Package bootstrap wires the report engine from environment configuration.
// Both the HTTP server and reportctl build their dependencies here.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/career-intel/internal/careercard"
	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/identity"
	"github.com/fadilmartias/career-intel/internal/model"
	"github.com/fadilmartias/career-intel/internal/repository"
	"github.com/fadilmartias/career-intel/internal/service"
	"github.com/fadilmartias/career-intel/internal/storage"
	"github.com/fadilmartias/career-intel/internal/usecase"
	"github.com/fadilmartias/career-intel/internal/util"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDB opens the application store and tunes the pool for the environment.
func ConnectDB(log *zap.Logger) (*gorm.DB, error) {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	gormLevel := gormlogger.Warn
	if appConfig.LogDebug {
		gormLevel = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	} else {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if dbConfig.AutoMigrate {
		log.Info("running database migrations")
		if err := db.AutoMigrate(
			&model.Organization{},
			&model.Job{},
			&model.Application{},
			&model.CareerCardFile{},
			&model.LegacyApplication{},
		); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}

// NewCareerReportUsecase assembles resolver, context builder, scorer and
// report store around db.
func NewCareerReportUsecase(ctx context.Context, db *gorm.DB, log *zap.Logger) (*usecase.CareerReportUsecase, error) {
	candidateConfig := config.LoadCandidateConfig()

	resolver, err := identity.NewResolver(candidateConfig.Namespace)
	if err != nil {
		return nil, err
	}

	deep := util.NewPDFTextExtractor(candidateConfig.DeepExtractor)
	if deep != nil {
		log.Info("deep pdf extraction enabled", zap.String("extractor", deep.Name()))
	}
	builder := careercard.NewBuilder(
		repository.NewApplicationRepository(db),
		repository.NewJobRepository(db),
		storage.NewFileStorage(candidateConfig.UploadRoots),
		deep,
		log,
	)

	scorer, err := service.NewScoringService(ctx, config.LoadScoringConfig(), config.LoadGeminiConfig(), log)
	if err != nil {
		return nil, err
	}
	store := service.NewRestReportStore(config.LoadReportStoreConfig(), log)

	return usecase.NewCareerReportUsecase(resolver, builder, scorer, store, log), nil
}
