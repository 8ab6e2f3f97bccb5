package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/pkg/types"
)

// MappingModel is the crosswalk_mappings table model
type MappingModel struct {
	ID                 string    `gorm:"primaryKey;type:varchar(64)"`
	ControlID          string    `gorm:"type:varchar(64);not null;index"`
	RequirementID      string    `gorm:"type:varchar(64);not null;index"`
	RequirementCode    string    `gorm:"type:varchar(64);not null"`
	FrameworkVersionID string    `gorm:"type:varchar(64);not null;index"`
	Strength           string    `gorm:"type:varchar(32);not null"`
	CoveragePercentage int       `gorm:"not null"`
	CoveredAspects     string    `gorm:"type:jsonb"`
	UncoveredAspects   string    `gorm:"type:jsonb"`
	Justification      string    `gorm:"type:text"`
	ValidFromVersion   string    `gorm:"type:varchar(64);not null"`
	ValidUntilVersion  string    `gorm:"type:varchar(64);index"`
	DriftStatus        string    `gorm:"type:varchar(32);not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName sets the table name
func (MappingModel) TableName() string {
	return "crosswalk_mappings"
}

type crosswalkRepo struct {
	db *gorm.DB
}

// NewCrosswalkRepository creates the crosswalk mapping repository
func NewCrosswalkRepository(db *gorm.DB) (crosswalk.Repository, error) {
	if err := db.AutoMigrate(&MappingModel{}); err != nil {
		return nil, dbError(err)
	}
	return &crosswalkRepo{db: db}, nil
}

func (r *crosswalkRepo) Create(ctx context.Context, mapping *crosswalk.Mapping) error {
	if err := r.db.WithContext(ctx).Create(mappingToModel(mapping)).Error; err != nil {
		return dbError(err)
	}
	return nil
}

func (r *crosswalkRepo) GetByID(ctx context.Context, id string) (*crosswalk.Mapping, error) {
	var model MappingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return mappingToEntity(&model), nil
}

func (r *crosswalkRepo) Update(ctx context.Context, mapping *crosswalk.Mapping) error {
	result := r.db.WithContext(ctx).
		Model(&MappingModel{}).
		Where("id = ?", mapping.ID).
		Updates(mappingToModel(mapping))
	if result.Error != nil {
		return dbError(result.Error)
	}
	return nil
}

// UpdateAll applies a batch of mapping changes inside one transaction
// so callers never observe a half-applied batch.
func (r *crosswalkRepo) UpdateAll(ctx context.Context, mappings []*crosswalk.Mapping) error {
	if len(mappings) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range mappings {
			if err := tx.Model(&MappingModel{}).
				Where("id = ?", m.ID).
				Updates(mappingToModel(m)).Error; err != nil {
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

func (r *crosswalkRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&MappingModel{}, "id = ?", id).Error; err != nil {
		return dbError(err)
	}
	return nil
}

func (r *crosswalkRepo) ListByVersion(ctx context.Context, frameworkVersionID string) ([]*crosswalk.Mapping, error) {
	return r.list(ctx, "framework_version_id = ?", frameworkVersionID)
}

func (r *crosswalkRepo) ListByRequirement(ctx context.Context, requirementID string) ([]*crosswalk.Mapping, error) {
	return r.list(ctx, "requirement_id = ?", requirementID)
}

func (r *crosswalkRepo) ListByControl(ctx context.Context, controlID string) ([]*crosswalk.Mapping, error) {
	return r.list(ctx, "control_id = ?", controlID)
}

func (r *crosswalkRepo) ListAll(ctx context.Context) ([]*crosswalk.Mapping, error) {
	return r.list(ctx, "1 = 1")
}

func (r *crosswalkRepo) list(ctx context.Context, query string, args ...interface{}) ([]*crosswalk.Mapping, error) {
	var models []MappingModel
	if err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("requirement_code, control_id").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	out := make([]*crosswalk.Mapping, 0, len(models))
	for i := range models {
		out = append(out, mappingToEntity(&models[i]))
	}
	return out, nil
}

func mappingToModel(m *crosswalk.Mapping) *MappingModel {
	return &MappingModel{
		ID:                 m.ID,
		ControlID:          m.ControlID,
		RequirementID:      m.RequirementID,
		RequirementCode:    m.RequirementCode,
		FrameworkVersionID: m.FrameworkVersionID,
		Strength:           string(m.Strength),
		CoveragePercentage: m.CoveragePercentage,
		CoveredAspects:     marshalJSON(m.CoveredAspects),
		UncoveredAspects:   marshalJSON(m.UncoveredAspects),
		Justification:      m.Justification,
		ValidFromVersion:   m.ValidFromVersion,
		ValidUntilVersion:  m.ValidUntilVersion,
		DriftStatus:        string(m.DriftStatus),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func mappingToEntity(m *MappingModel) *crosswalk.Mapping {
	entity := &crosswalk.Mapping{
		ID:                 m.ID,
		ControlID:          m.ControlID,
		RequirementID:      m.RequirementID,
		RequirementCode:    m.RequirementCode,
		FrameworkVersionID: m.FrameworkVersionID,
		Strength:           types.MappingStrength(m.Strength),
		CoveragePercentage: m.CoveragePercentage,
		Justification:      m.Justification,
		ValidFromVersion:   m.ValidFromVersion,
		ValidUntilVersion:  m.ValidUntilVersion,
		DriftStatus:        types.DriftStatus(m.DriftStatus),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	unmarshalJSON(m.CoveredAspects, &entity.CoveredAspects)
	unmarshalJSON(m.UncoveredAspects, &entity.UncoveredAspects)
	return entity
}
