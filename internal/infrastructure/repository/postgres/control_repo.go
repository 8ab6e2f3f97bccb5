package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/pkg/types"
)

// ControlModel is the controls table model
type ControlModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	RiskLevel   string    `gorm:"type:varchar(32);not null"`
	Keywords    string    `gorm:"type:jsonb"`
	Domain      string    `gorm:"type:varchar(128);index"`
	Owner       string    `gorm:"type:varchar(128)"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName sets the table name
func (ControlModel) TableName() string {
	return "controls"
}

// AnswerModel is the control_answers table model. Answers are written by
// the questionnaire collaborator; this repository only reads them.
type AnswerModel struct {
	ControlID  string    `gorm:"primaryKey;type:varchar(64)"`
	Value      string    `gorm:"type:varchar(16);not null"`
	Evidence   string    `gorm:"type:jsonb"`
	AnsweredAt time.Time `gorm:"not null"`
}

// TableName sets the table name
func (AnswerModel) TableName() string {
	return "control_answers"
}

type controlRepo struct {
	db *gorm.DB
}

// NewControlRepository creates the read-side control repository
func NewControlRepository(db *gorm.DB) (control.Repository, error) {
	if err := db.AutoMigrate(&ControlModel{}); err != nil {
		return nil, dbError(err)
	}
	return &controlRepo{db: db}, nil
}

func (r *controlRepo) GetByID(ctx context.Context, id string) (*control.Control, error) {
	var model ControlModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, dbError(err)
	}
	return controlToEntity(&model), nil
}

func (r *controlRepo) List(ctx context.Context) ([]*control.Control, error) {
	var models []ControlModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return controlsToEntities(models), nil
}

func (r *controlRepo) ListByDomain(ctx context.Context, domain string) ([]*control.Control, error) {
	var models []ControlModel
	if err := r.db.WithContext(ctx).
		Where("domain = ?", domain).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, dbError(err)
	}
	return controlsToEntities(models), nil
}

type answerLookup struct {
	db *gorm.DB
}

// NewAnswerLookup creates the read-side answer lookup
func NewAnswerLookup(db *gorm.DB) (control.AnswerLookup, error) {
	if err := db.AutoMigrate(&AnswerModel{}); err != nil {
		return nil, dbError(err)
	}
	return &answerLookup{db: db}, nil
}

func (l *answerLookup) Answer(ctx context.Context, controlID string) (control.Answer, bool) {
	var model AnswerModel
	if err := l.db.WithContext(ctx).First(&model, "control_id = ?", controlID).Error; err != nil {
		return control.Answer{}, false
	}
	answer := control.Answer{
		ControlID:  model.ControlID,
		Value:      types.NormalizeAnswer(model.Value),
		AnsweredAt: model.AnsweredAt,
	}
	unmarshalJSON(model.Evidence, &answer.Evidence)
	return answer, true
}

func controlToEntity(m *ControlModel) *control.Control {
	c := &control.Control{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		RiskLevel:   types.RiskLevel(m.RiskLevel),
		Domain:      m.Domain,
		Owner:       m.Owner,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	unmarshalJSON(m.Keywords, &c.Keywords)
	return c
}

func controlsToEntities(models []ControlModel) []*control.Control {
	out := make([]*control.Control, 0, len(models))
	for i := range models {
		out = append(out, controlToEntity(&models[i]))
	}
	return out
}
