package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/regtrace/regtrace/internal/domain/gap"
	"github.com/regtrace/regtrace/pkg/types"
)

// GapModel is the custom_gaps table model
type GapModel struct {
	ID                 string    `gorm:"primaryKey;type:varchar(64)"`
	RequirementID      string    `gorm:"type:varchar(64);not null;index"`
	RequirementCode    string    `gorm:"type:varchar(64);not null"`
	FrameworkVersionID string    `gorm:"type:varchar(64);not null;index"`
	GapType            string    `gorm:"type:varchar(32);not null"`
	Severity           string    `gorm:"type:varchar(16);not null"`
	Coverage           int       `gorm:"not null"`
	Status             string    `gorm:"type:varchar(32);not null;index"`
	Notes              string    `gorm:"type:text"`
	ResolutionOptions  string    `gorm:"type:jsonb"`
	DirectEvidence     string    `gorm:"type:jsonb"`
	IdentifiedAt       time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName sets the table name
func (GapModel) TableName() string {
	return "custom_gaps"
}

type gapRepo struct {
	db *gorm.DB
}

// NewGapRepository creates the custom gap repository
func NewGapRepository(db *gorm.DB) (gap.Repository, error) {
	if err := db.AutoMigrate(&GapModel{}); err != nil {
		return nil, dbError(err)
	}
	return &gapRepo{db: db}, nil
}

func (r *gapRepo) GetByID(ctx context.Context, id string) (*gap.CustomGap, error) {
	var model GapModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return gapToEntity(&model), nil
}

func (r *gapRepo) ListAll(ctx context.Context) ([]*gap.CustomGap, error) {
	var models []GapModel
	if err := r.db.WithContext(ctx).
		Order("framework_version_id, requirement_code").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return gapsToEntities(models), nil
}

func (r *gapRepo) ListOpen(ctx context.Context) ([]*gap.CustomGap, error) {
	var models []GapModel
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{
			string(types.GapStatusResolved),
			string(types.GapStatusAcceptedRisk),
		}).
		Order("framework_version_id, requirement_code").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return gapsToEntities(models), nil
}

func (r *gapRepo) Update(ctx context.Context, g *gap.CustomGap) error {
	result := r.db.WithContext(ctx).
		Model(&GapModel{}).
		Where("id = ?", g.ID).
		Updates(gapToModel(g))
	if result.Error != nil {
		return dbError(result.Error)
	}
	return nil
}

// ReplaceForVersion swaps one framework version's records inside one
// transaction so a recalculation pass is never observed half-applied
// and never touches other versions' rows.
func (r *gapRepo) ReplaceForVersion(ctx context.Context, frameworkVersionID string, gaps []*gap.CustomGap) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("framework_version_id = ?", frameworkVersionID).Delete(&GapModel{}).Error; err != nil {
			return err
		}
		for _, g := range gaps {
			if err := tx.Create(gapToModel(g)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dbError(err)
	}
	return nil
}

func gapToModel(g *gap.CustomGap) *GapModel {
	return &GapModel{
		ID:                 g.ID,
		RequirementID:      g.RequirementID,
		RequirementCode:    g.RequirementCode,
		FrameworkVersionID: g.FrameworkVersionID,
		GapType:            string(g.GapType),
		Severity:           string(g.Severity),
		Coverage:           g.Coverage,
		Status:             string(g.Status),
		Notes:              g.Notes,
		ResolutionOptions:  marshalJSON(g.ResolutionOptions),
		DirectEvidence:     marshalJSON(g.DirectEvidence),
		IdentifiedAt:       g.IdentifiedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

func gapToEntity(m *GapModel) *gap.CustomGap {
	g := &gap.CustomGap{
		ID:                 m.ID,
		RequirementID:      m.RequirementID,
		RequirementCode:    m.RequirementCode,
		FrameworkVersionID: m.FrameworkVersionID,
		GapType:            types.GapType(m.GapType),
		Severity:           types.Severity(m.Severity),
		Coverage:           m.Coverage,
		Status:             types.GapStatus(m.Status),
		Notes:              m.Notes,
		IdentifiedAt:       m.IdentifiedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	unmarshalJSON(m.ResolutionOptions, &g.ResolutionOptions)
	unmarshalJSON(m.DirectEvidence, &g.DirectEvidence)
	return g
}

func gapsToEntities(models []GapModel) []*gap.CustomGap {
	out := make([]*gap.CustomGap, 0, len(models))
	for i := range models {
		out = append(out, gapToEntity(&models[i]))
	}
	return out
}
