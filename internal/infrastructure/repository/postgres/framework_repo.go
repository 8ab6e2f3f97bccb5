package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/pkg/types"
)

// VersionModel is the framework_versions table model
type VersionModel struct {
	ID                 string     `gorm:"primaryKey;type:varchar(64)"`
	FrameworkID        string     `gorm:"type:varchar(64);not null;index"`
	VersionCode        string     `gorm:"type:varchar(64);not null"`
	Name               string     `gorm:"type:varchar(255);not null"`
	Status             string     `gorm:"type:varchar(32);not null;index"`
	PublishedDate      time.Time  `gorm:"not null"`
	EffectiveDate      time.Time  `gorm:"not null;index"`
	TransitionDeadline *time.Time `gorm:""`
	SunsetDate         *time.Time `gorm:""`
	PreviousVersionID  string     `gorm:"type:varchar(64)"`
	Changes            string     `gorm:"type:jsonb"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName sets the table name
func (VersionModel) TableName() string {
	return "framework_versions"
}

type frameworkRepo struct {
	db *gorm.DB
}

// NewFrameworkRepository creates the framework version repository
func NewFrameworkRepository(db *gorm.DB) (framework.Repository, error) {
	if err := db.AutoMigrate(&VersionModel{}); err != nil {
		return nil, dbError(err)
	}
	return &frameworkRepo{db: db}, nil
}

func (r *frameworkRepo) Create(ctx context.Context, version *framework.Version) error {
	if err := r.db.WithContext(ctx).Create(versionToModel(version)).Error; err != nil {
		return dbError(err)
	}
	return nil
}

func (r *frameworkRepo) GetByID(ctx context.Context, id string) (*framework.Version, error) {
	var model VersionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return versionToEntity(&model), nil
}

func (r *frameworkRepo) Update(ctx context.Context, version *framework.Version) error {
	result := r.db.WithContext(ctx).
		Model(&VersionModel{}).
		Where("id = ?", version.ID).
		Updates(versionToModel(version))
	if result.Error != nil {
		return dbError(result.Error)
	}
	return nil
}

func (r *frameworkRepo) ListByFramework(ctx context.Context, frameworkID string) ([]*framework.Version, error) {
	var models []VersionModel
	if err := r.db.WithContext(ctx).
		Where("framework_id = ?", frameworkID).
		Order("effective_date").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return versionsToEntities(models), nil
}

func (r *frameworkRepo) ListByStatus(ctx context.Context, frameworkID string, status types.VersionStatus) ([]*framework.Version, error) {
	var models []VersionModel
	if err := r.db.WithContext(ctx).
		Where("framework_id = ? AND status = ?", frameworkID, string(status)).
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return versionsToEntities(models), nil
}

func (r *frameworkRepo) ListFrameworks(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&VersionModel{}).
		Distinct("framework_id").
		Order("framework_id").
		Pluck("framework_id", &ids).Error; err != nil {
		return nil, dbError(err)
	}
	return ids, nil
}

func versionToModel(v *framework.Version) *VersionModel {
	return &VersionModel{
		ID:                 v.ID,
		FrameworkID:        v.FrameworkID,
		VersionCode:        v.VersionCode,
		Name:               v.Name,
		Status:             string(v.Status),
		PublishedDate:      v.PublishedDate,
		EffectiveDate:      v.EffectiveDate,
		TransitionDeadline: v.TransitionDeadline,
		SunsetDate:         v.SunsetDate,
		PreviousVersionID:  v.PreviousVersionID,
		Changes:            marshalJSON(v.Changes),
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

func versionToEntity(m *VersionModel) *framework.Version {
	v := &framework.Version{
		ID:                 m.ID,
		FrameworkID:        m.FrameworkID,
		VersionCode:        m.VersionCode,
		Name:               m.Name,
		Status:             types.VersionStatus(m.Status),
		PublishedDate:      m.PublishedDate,
		EffectiveDate:      m.EffectiveDate,
		TransitionDeadline: m.TransitionDeadline,
		SunsetDate:         m.SunsetDate,
		PreviousVersionID:  m.PreviousVersionID,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	unmarshalJSON(m.Changes, &v.Changes)
	return v
}

func versionsToEntities(models []VersionModel) []*framework.Version {
	out := make([]*framework.Version, 0, len(models))
	for i := range models {
		out = append(out, versionToEntity(&models[i]))
	}
	return out
}
