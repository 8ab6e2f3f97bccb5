package service

import (
	"context"
	"time"

	"github.com/regtrace/regtrace/internal/app/dto"
	"github.com/regtrace/regtrace/internal/domain/compare"
	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/internal/domain/gap"
	"github.com/regtrace/regtrace/internal/domain/scoring"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/redis"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/types"

	crosswalkdomain "github.com/regtrace/regtrace/internal/domain/crosswalk"
)

const dashboardCacheKey = "dashboard"

// DashboardService assembles the composed compliance posture read model
type DashboardService struct {
	frameworks framework.Repository
	versions   framework.Service
	mappings   crosswalkdomain.Repository
	controls   control.Repository
	answers    control.AnswerLookup
	engine     drift.Engine
	gaps       gap.Repository
	comparator *compare.Comparator

	cache  redis.SnapshotCache
	logger logging.Logger
}

// NewDashboardService creates the dashboard read-model assembler
func NewDashboardService(
	frameworks framework.Repository,
	versions framework.Service,
	mappings crosswalkdomain.Repository,
	controls control.Repository,
	answers control.AnswerLookup,
	engine drift.Engine,
	gaps gap.Repository,
	comparator *compare.Comparator,
	cache redis.SnapshotCache,
	logger logging.Logger,
) *DashboardService {
	return &DashboardService{
		frameworks: frameworks,
		versions:   versions,
		mappings:   mappings,
		controls:   controls,
		answers:    answers,
		engine:     engine,
		gaps:       gaps,
		comparator: comparator,
		cache:      cache,
		logger:     logger,
	}
}

// Dashboard returns the composed posture read model, served from cache
// when a fresh snapshot exists. Scores are always consistent with each
// other because a single pass computes them all.
func (s *DashboardService) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	var cached dto.Dashboard
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	board, err := s.assemble(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, board); err != nil {
		s.logger.Warn("dashboard cache write failed", logging.Error(err))
	}
	return board, nil
}

func (s *DashboardService) assemble(ctx context.Context) (*dto.Dashboard, error) {
	now := time.Now().UTC()
	answers := s.answerFunc(ctx)

	controls, err := s.controls.List(ctx)
	if err != nil {
		return nil, err
	}

	frameworkIDs, err := s.frameworks.ListFrameworks(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]scoring.FrameworkSummary, 0, len(frameworkIDs))
	allMappings := make([]*crosswalkdomain.Mapping, 0)
	for _, fwID := range frameworkIDs {
		active, err := s.versions.GetActive(ctx, fwID)
		if err != nil {
			// Frameworks without an active version stay off the dashboard
			continue
		}
		mappings, err := s.mappings.ListByVersion(ctx, active.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, scoring.FrameworkPercentage(active.ID, mappings, answers))
		allMappings = append(allMappings, mappings...)
	}

	openDrift, err := s.engine.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	openGaps, err := s.gaps.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.Dashboard{
		GeneratedAt: now,
		Frameworks:  summaries,
		Domains:     scoring.GroupByDomain(allMappings, controls, answers),
		Weighted:    scoring.ComputeWeightedScore(controls, answers),
		OpenDrift:   dto.NewDriftViews(openDrift, now),
		OpenGaps:    openGaps,
	}, nil
}

// Compare renders the side-by-side record for one requirement across a
// version pair
func (s *DashboardService) Compare(ctx context.Context, code, oldVersionID, newVersionID string) (*compare.Comparison, error) {
	return s.comparator.Compare(ctx, code, oldVersionID, newVersionID)
}

func (s *DashboardService) answerFunc(ctx context.Context) scoring.AnswerFunc {
	return func(controlID string) (types.AnswerValue, bool) {
		answer, ok := s.answers.Answer(ctx, controlID)
		return answer.Value, ok
	}
}
