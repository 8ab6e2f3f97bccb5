package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/regtrace/regtrace/internal/domain/gap"
	"github.com/regtrace/regtrace/internal/infrastructure/message"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/redis"
	"github.com/regtrace/regtrace/internal/infrastructure/storage"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
)

// GapService manages gap lifecycle and direct evidence
type GapService struct {
	gaps      gap.Repository
	evidence  storage.EvidenceStore
	cache     redis.SnapshotCache
	publisher message.Publisher
	logger    logging.Logger
}

// NewGapService creates the gap lifecycle service
func NewGapService(gaps gap.Repository, evidence storage.EvidenceStore,
	cache redis.SnapshotCache, publisher message.Publisher, logger logging.Logger) *GapService {

	return &GapService{gaps: gaps, evidence: evidence, cache: cache, publisher: publisher, logger: logger}
}

// Get retrieves one gap
func (s *GapService) Get(ctx context.Context, id string) (*gap.CustomGap, error) {
	g, err := s.gaps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errors.NotFoundError("gap record")
	}
	return g, nil
}

// ListOpen retrieves gaps still needing action
func (s *GapService) ListOpen(ctx context.Context) ([]*gap.CustomGap, error) {
	return s.gaps.ListOpen(ctx)
}

// ListAll retrieves every gap
func (s *GapService) ListAll(ctx context.Context) ([]*gap.CustomGap, error) {
	return s.gaps.ListAll(ctx)
}

// UpdateStatus transitions a gap's lifecycle status. The status survives
// the next recalculation pass; only coverage changes can retire a gap
// outright.
func (s *GapService) UpdateStatus(ctx context.Context, id string, status types.GapStatus, notes string) (*gap.CustomGap, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	g.Status = status
	if notes != "" {
		g.Notes = notes
	}
	g.UpdatedAt = time.Now().UTC()
	if err := s.gaps.Update(ctx, g); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishGap(ctx, newEvent("gap.status_changed", g.ID, g)); err != nil {
		s.logger.Warn("gap event publish failed", logging.String("gap_id", g.ID), logging.Error(err))
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", logging.Error(err))
	}
	return g, nil
}

// AttachEvidence stores an evidence object and records it on the gap.
// Direct evidence supports resolving a gap without creating a control.
func (s *GapService) AttachEvidence(ctx context.Context, id, fileName, contentType string,
	size int64, body io.Reader) (*gap.CustomGap, error) {

	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := "gaps/" + g.ID + "/" + uuid.NewString() + "-" + fileName
	info, err := s.evidence.Put(ctx, key, fileName, contentType, size, body)
	if err != nil {
		return nil, err
	}

	g.DirectEvidence = append(g.DirectEvidence, gap.EvidenceRef{
		ObjectKey:  info.Key,
		FileName:   info.FileName,
		UploadedAt: info.UploadedAt,
	})
	g.UpdatedAt = time.Now().UTC()
	if err := s.gaps.Update(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("evidence attached",
		logging.String("gap_id", g.ID),
		logging.String("object_key", info.Key))
	return g, nil
}

// EvidenceURL returns a presigned download URL for one of the gap's
// evidence objects
func (s *GapService) EvidenceURL(ctx context.Context, id, objectKey string) (string, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	for _, ref := range g.DirectEvidence {
		if ref.ObjectKey == objectKey {
			return s.evidence.PresignedGetURL(ctx, objectKey)
		}
	}
	return "", errors.NotFoundError("evidence object")
}
