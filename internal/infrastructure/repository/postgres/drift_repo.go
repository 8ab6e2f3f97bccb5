package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/regtrace/regtrace/internal/domain/drift"
	"github.com/regtrace/regtrace/pkg/types"
)

// DriftModel is the compliance_drifts table model
type DriftModel struct {
	ID                    string     `gorm:"primaryKey;type:varchar(64)"`
	ControlID             string     `gorm:"type:varchar(64);not null;index"`
	MappingID             string     `gorm:"type:varchar(64);index"`
	RequirementID         string     `gorm:"type:varchar(64);not null;index"`
	RequirementCode       string     `gorm:"type:varchar(64);not null"`
	OldFrameworkVersionID string     `gorm:"type:varchar(64);not null"`
	NewFrameworkVersionID string     `gorm:"type:varchar(64);not null;index"`
	DriftType             string     `gorm:"type:varchar(48);not null"`
	Severity              string     `gorm:"type:varchar(16);not null"`
	PreviousAnswer        string     `gorm:"type:varchar(16)"`
	AnswerStillValid      bool       `gorm:"not null"`
	ValidityReason        string     `gorm:"type:text"`
	Status                string     `gorm:"type:varchar(32);not null;index"`
	ResolutionPath        string     `gorm:"type:jsonb"`
	ComplianceDeadline    time.Time  `gorm:"not null"`
	ResolvedAt            *time.Time `gorm:""`
	ResolvedBy            string     `gorm:"type:varchar(128)"`
	ResolutionType        string     `gorm:"type:varchar(64)"`
	ResolutionNotes       string     `gorm:"type:text"`
	DetectedAt            time.Time  `gorm:"not null"`
	UpdatedAt             time.Time  `gorm:"not null"`
}

// TableName sets the table name
func (DriftModel) TableName() string {
	return "compliance_drifts"
}

type driftRepo struct {
	db *gorm.DB
}

// NewDriftRepository creates the drift finding repository
func NewDriftRepository(db *gorm.DB) (drift.Repository, error) {
	if err := db.AutoMigrate(&DriftModel{}); err != nil {
		return nil, dbError(err)
	}
	return &driftRepo{db: db}, nil
}

func (r *driftRepo) Create(ctx context.Context, d *drift.ComplianceDrift) error {
	if err := r.db.WithContext(ctx).Create(driftToModel(d)).Error; err != nil {
		return dbError(err)
	}
	return nil
}

func (r *driftRepo) GetByID(ctx context.Context, id string) (*drift.ComplianceDrift, error) {
	var model DriftModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return driftToEntity(&model), nil
}

func (r *driftRepo) Update(ctx context.Context, d *drift.ComplianceDrift) error {
	result := r.db.WithContext(ctx).
		Model(&DriftModel{}).
		Where("id = ?", d.ID).
		Updates(driftToModel(d))
	if result.Error != nil {
		return dbError(result.Error)
	}
	return nil
}

// SaveScan commits a scan's findings inside one transaction so a failed
// pass never leaves a partial result set behind.
func (r *driftRepo) SaveScan(ctx context.Context, findings []*drift.ComplianceDrift) error {
	if len(findings) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range findings {
			result := tx.Model(&DriftModel{}).
				Where("id = ?", d.ID).
				Updates(driftToModel(d))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				if err := tx.Create(driftToModel(d)).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *driftRepo) FindDetected(ctx context.Context, controlID, requirementID, oldVersionID, newVersionID string) (*drift.ComplianceDrift, error) {
	var model DriftModel
	err := r.db.WithContext(ctx).
		Where("control_id = ? AND requirement_id = ? AND old_framework_version_id = ? AND new_framework_version_id = ? AND status = ?",
			controlID, requirementID, oldVersionID, newVersionID, string(types.DriftRecordDetected)).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return driftToEntity(&model), nil
}

func (r *driftRepo) ListOpen(ctx context.Context) ([]*drift.ComplianceDrift, error) {
	var models []DriftModel
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{
			string(types.DriftRecordResolved),
			string(types.DriftRecordAcceptedRisk),
		}).
		Order("compliance_deadline, id").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return driftsToEntities(models), nil
}

func (r *driftRepo) ListAll(ctx context.Context) ([]*drift.ComplianceDrift, error) {
	var models []DriftModel
	if err := r.db.WithContext(ctx).
		Order("detected_at, id").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return driftsToEntities(models), nil
}

func driftToModel(d *drift.ComplianceDrift) *DriftModel {
	return &DriftModel{
		ID:                    d.ID,
		ControlID:             d.ControlID,
		MappingID:             d.MappingID,
		RequirementID:         d.RequirementID,
		RequirementCode:       d.RequirementCode,
		OldFrameworkVersionID: d.OldFrameworkVersionID,
		NewFrameworkVersionID: d.NewFrameworkVersionID,
		DriftType:             string(d.DriftType),
		Severity:              string(d.Severity),
		PreviousAnswer:        string(d.PreviousAnswer),
		AnswerStillValid:      d.AnswerStillValid,
		ValidityReason:        d.ValidityReason,
		Status:                string(d.Status),
		ResolutionPath:        marshalJSON(d.ResolutionPath),
		ComplianceDeadline:    d.ComplianceDeadline,
		ResolvedAt:            d.ResolvedAt,
		ResolvedBy:            d.ResolvedBy,
		ResolutionType:        d.ResolutionType,
		ResolutionNotes:       d.ResolutionNotes,
		DetectedAt:            d.DetectedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func driftToEntity(m *DriftModel) *drift.ComplianceDrift {
	d := &drift.ComplianceDrift{
		ID:                    m.ID,
		ControlID:             m.ControlID,
		MappingID:             m.MappingID,
		RequirementID:         m.RequirementID,
		RequirementCode:       m.RequirementCode,
		OldFrameworkVersionID: m.OldFrameworkVersionID,
		NewFrameworkVersionID: m.NewFrameworkVersionID,
		DriftType:             types.DriftType(m.DriftType),
		Severity:              types.Severity(m.Severity),
		PreviousAnswer:        types.AnswerValue(m.PreviousAnswer),
		AnswerStillValid:      m.AnswerStillValid,
		ValidityReason:        m.ValidityReason,
		Status:                types.DriftRecordStatus(m.Status),
		ComplianceDeadline:    m.ComplianceDeadline,
		ResolvedAt:            m.ResolvedAt,
		ResolvedBy:            m.ResolvedBy,
		ResolutionType:        m.ResolutionType,
		ResolutionNotes:       m.ResolutionNotes,
		DetectedAt:            m.DetectedAt,
		UpdatedAt:             m.UpdatedAt,
	}
	unmarshalJSON(m.ResolutionPath, &d.ResolutionPath)
	return d
}

func driftsToEntities(models []DriftModel) []*drift.ComplianceDrift {
	out := make([]*drift.ComplianceDrift, 0, len(models))
	for i := range models {
		out = append(out, driftToEntity(&models[i]))
	}
	return out
}
