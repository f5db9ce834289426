package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/career-intel/internal/contenthash"
	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/logger"
	"github.com/fadilmartias/career-intel/internal/service"
	"go.uber.org/zap"
)

type IdentityResolver interface {
	Resolve(raw string) (domain.CanonicalIdentity, error)
}

type ContextBuilder interface {
	Build(ctx context.Context, identity domain.CanonicalIdentity) (*domain.CandidateContext, error)
	// Locate fails with domain.ErrCandidateNotFound when no application
	// backs identity.
	Locate(ctx context.Context, identity domain.CanonicalIdentity) error
}

type CareerReportUsecaseInterface interface {
	EnsureReport(ctx context.Context, candidateID string, forceRefresh bool) (*domain.EnsureResult, error)
	FetchReport(ctx context.Context, candidateID string) (*domain.StoredReport, error)
}

type CareerReportUsecase struct {
	resolver IdentityResolver
	builder  ContextBuilder
	scorer   service.ScoringServiceInterface
	store    service.ReportStoreInterface
	now      func() time.Time
	log      *zap.Logger
}

func NewCareerReportUsecase(
	resolver IdentityResolver,
	builder ContextBuilder,
	scorer service.ScoringServiceInterface,
	store service.ReportStoreInterface,
	log *zap.Logger,
) *CareerReportUsecase {
	return &CareerReportUsecase{
		resolver: resolver,
		builder:  builder,
		scorer:   scorer,
		store:    store,
		now:      time.Now,
		log:      logger.OrNop(log),
	}
}

// EnsureReport returns a report whose input hash matches the candidate's
// current data, scoring and upserting only when the stored one is stale.
// Concurrent calls for one candidate may both score; the upsert keeps the
// last write.
func (uc *CareerReportUsecase) EnsureReport(ctx context.Context, candidateID string, forceRefresh bool) (*domain.EnsureResult, error) {
	identity, err := uc.resolver.Resolve(candidateID)
	if err != nil {
		return nil, err
	}
	log := uc.log.With(zap.String(logger.FieldCandidate, identity.StableID.String()))

	var (
		cc               *domain.CandidateContext
		existing         *domain.StoredReport
		buildErr, getErr error
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cc, buildErr = uc.builder.Build(ctx, identity)
	}()
	go func() {
		defer wg.Done()
		existing, getErr = uc.store.Fetch(ctx, identity.StableID)
	}()
	wg.Wait()

	// Candidate errors take precedence so callers see "not found" before
	// any store failure.
	if buildErr != nil {
		return nil, buildErr
	}
	if getErr != nil {
		return nil, getErr
	}

	if contenthash.IsValid(existing, forceRefresh, cc.InputHash) {
		log.Debug("career report cache hit")
		return &domain.EnsureResult{Status: domain.StatusCached, Report: existing}, nil
	}

	log = logger.WithScoring(log, uc.scorer.Provider(), uc.scorer.Model())
	log.Info("scoring candidate",
		zap.Bool("force_refresh", forceRefresh),
		zap.Bool("has_existing", existing != nil),
	)

	result, err := uc.scorer.Score(ctx, cc.Scoring)
	if err != nil {
		log.Error("scoring failed", zap.Error(err))
		return nil, err
	}

	report, err := uc.store.Upsert(ctx, identity.StableID, result, uc.metadata(cc, result))
	if err != nil {
		log.Error("report upsert failed", zap.Error(err))
		return nil, err
	}

	status := domain.StatusCreated
	if existing != nil {
		status = domain.StatusRefreshed
	}
	log.Info("career report stored", zap.String("status", string(status)))
	return &domain.EnsureResult{Status: status, Report: report}, nil
}

// FetchReport returns the stored report without scoring. A missing candidate
// is reported as ErrCandidateNotFound, a known candidate without a report as
// ErrReportNotFound.
func (uc *CareerReportUsecase) FetchReport(ctx context.Context, candidateID string) (*domain.StoredReport, error) {
	identity, err := uc.resolver.Resolve(candidateID)
	if err != nil {
		return nil, err
	}
	report, err := uc.store.Fetch(ctx, identity.StableID)
	if err != nil {
		return nil, err
	}
	if report == nil || identity.SourceApplicationID != nil {
		if err := uc.builder.Locate(ctx, identity); err != nil {
			if !errors.Is(err, domain.ErrCandidateNotFound) {
				uc.log.Error("candidate lookup failed",
					zap.String(logger.FieldCandidate, identity.StableID.String()),
					zap.Error(err),
				)
			}
			return nil, err
		}
	}
	if report == nil {
		return nil, fmt.Errorf("%w: candidate %s", domain.ErrReportNotFound, identity.StableID)
	}
	return report, nil
}

func (uc *CareerReportUsecase) metadata(cc *domain.CandidateContext, result *domain.ScoringResult) domain.ReportMetadata {
	model, provider := result.Model, result.Provider
	if model == "" {
		model = uc.scorer.Model()
	}
	if provider == "" {
		provider = uc.scorer.Provider()
	}
	return domain.ReportMetadata{
		InputHash:           cc.InputHash,
		Model:               model,
		Provider:            provider,
		SourceApplicationID: cc.Identity.SourceApplicationID,
		ApplicationID:       cc.Provenance.ApplicationID,
		JobID:               cc.Provenance.JobID,
		OrgID:               cc.Provenance.OrgID,
		JobTitle:            cc.Provenance.JobTitle,
		CompanyName:         cc.Provenance.CompanyName,
		CareerCardSource:    cc.Provenance.CareerCardSource,
		GeneratedAt:         uc.now().UTC(),
	}
}
