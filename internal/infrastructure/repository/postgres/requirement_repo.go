package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/pkg/types"
)

// RequirementModel is the master_requirements table model
type RequirementModel struct {
	ID                    string    `gorm:"primaryKey;type:varchar(64)"`
	FrameworkVersionID    string    `gorm:"type:varchar(64);not null;index"`
	RequirementCode       string    `gorm:"type:varchar(64);not null;index"`
	Title                 string    `gorm:"type:varchar(255);not null"`
	OfficialText          string    `gorm:"type:text;not null"`
	ImplementationLevel   string    `gorm:"type:varchar(32);not null"`
	RequiredEvidenceTypes string    `gorm:"type:jsonb"`
	VerificationFrequency string    `gorm:"type:varchar(32);not null"`
	RiskWeight            int       `gorm:"not null"`
	EmergingTechCategory  string    `gorm:"type:varchar(64)"`
	Keywords              string    `gorm:"type:jsonb"`
	EffectiveDate         time.Time `gorm:"not null"`
	CreatedAt             time.Time `gorm:"not null"`
}

// TableName sets the table name
func (RequirementModel) TableName() string {
	return "master_requirements"
}

type requirementRepo struct {
	db *gorm.DB
}

// NewRequirementRepository creates the master requirement repository
func NewRequirementRepository(db *gorm.DB) (requirement.Repository, error) {
	if err := db.AutoMigrate(&RequirementModel{}); err != nil {
		return nil, dbError(err)
	}
	return &requirementRepo{db: db}, nil
}

func (r *requirementRepo) Create(ctx context.Context, req *requirement.MasterRequirement) error {
	if err := r.db.WithContext(ctx).Create(requirementToModel(req)).Error; err != nil {
		return dbError(err)
	}
	return nil
}

func (r *requirementRepo) GetByID(ctx context.Context, id string) (*requirement.MasterRequirement, error) {
	var model RequirementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return requirementToEntity(&model), nil
}

func (r *requirementRepo) GetByCode(ctx context.Context, frameworkVersionID, code string) (*requirement.MasterRequirement, error) {
	var model RequirementModel
	if err := r.db.WithContext(ctx).
		First(&model, "framework_version_id = ? AND requirement_code = ?", frameworkVersionID, code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return requirementToEntity(&model), nil
}

func (r *requirementRepo) ListByVersion(ctx context.Context, frameworkVersionID string) ([]*requirement.MasterRequirement, error) {
	var models []RequirementModel
	if err := r.db.WithContext(ctx).
		Where("framework_version_id = ?", frameworkVersionID).
		Order("requirement_code").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return requirementsToEntities(models), nil
}

func (r *requirementRepo) ListAll(ctx context.Context) ([]*requirement.MasterRequirement, error) {
	var models []RequirementModel
	if err := r.db.WithContext(ctx).
		Order("framework_version_id, requirement_code").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return requirementsToEntities(models), nil
}

func requirementToModel(req *requirement.MasterRequirement) *RequirementModel {
	return &RequirementModel{
		ID:                    req.ID,
		FrameworkVersionID:    req.FrameworkVersionID,
		RequirementCode:       req.RequirementCode,
		Title:                 req.Title,
		OfficialText:          req.OfficialText,
		ImplementationLevel:   string(req.ImplementationLevel),
		RequiredEvidenceTypes: marshalJSON(req.RequiredEvidenceTypes),
		VerificationFrequency: string(req.VerificationFrequency),
		RiskWeight:            req.RiskWeight,
		EmergingTechCategory:  req.EmergingTechCategory,
		Keywords:              marshalJSON(req.Keywords),
		EffectiveDate:         req.EffectiveDate,
		CreatedAt:             req.CreatedAt,
	}
}

func requirementToEntity(m *RequirementModel) *requirement.MasterRequirement {
	req := &requirement.MasterRequirement{
		ID:                    m.ID,
		FrameworkVersionID:    m.FrameworkVersionID,
		RequirementCode:       m.RequirementCode,
		Title:                 m.Title,
		OfficialText:          m.OfficialText,
		ImplementationLevel:   types.ImplementationLevel(m.ImplementationLevel),
		VerificationFrequency: types.VerificationFrequency(m.VerificationFrequency),
		RiskWeight:            m.RiskWeight,
		EmergingTechCategory:  m.EmergingTechCategory,
		EffectiveDate:         m.EffectiveDate,
		CreatedAt:             m.CreatedAt,
	}
	unmarshalJSON(m.RequiredEvidenceTypes, &req.RequiredEvidenceTypes)
	unmarshalJSON(m.Keywords, &req.Keywords)
	return req
}

func requirementsToEntities(models []RequirementModel) []*requirement.MasterRequirement {
	out := make([]*requirement.MasterRequirement, 0, len(models))
	for i := range models {
		out = append(out, requirementToEntity(&models[i]))
	}
	return out
}
