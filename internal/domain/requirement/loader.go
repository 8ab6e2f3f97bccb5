// Package requirement provides the YAML catalog loader, the ingestion
// path by which published framework versions and their requirement sets
// enter the library.
package requirement

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/pkg/errors"
	"github.com/regtrace/regtrace/pkg/types"
	"gopkg.in/yaml.v3"
)

// CatalogDocument is the on-disk shape of a framework catalog
type CatalogDocument struct {
	FrameworkID  string               `yaml:"framework_id"`
	VersionCode  string               `yaml:"version_code"`
	Name         string               `yaml:"name"`
	Published    time.Time            `yaml:"published"`
	Effective    time.Time            `yaml:"effective"`
	Transition   *time.Time           `yaml:"transition_deadline,omitempty"`
	Requirements []CatalogRequirement `yaml:"requirements"`
}

// CatalogRequirement is one requirement entry in a catalog document
type CatalogRequirement struct {
	Code          string    `yaml:"code"`
	Title         string    `yaml:"title"`
	Text          string    `yaml:"text"`
	Level         string    `yaml:"level"`
	EvidenceTypes []string  `yaml:"evidence_types,omitempty"`
	Frequency     string    `yaml:"frequency"`
	RiskWeight    int       `yaml:"risk_weight"`
	EmergingTech  string    `yaml:"emerging_tech,omitempty"`
	Keywords      []string  `yaml:"keywords,omitempty"`
	Effective     time.Time `yaml:"effective,omitempty"`
}

// Loader ingests catalog documents into the version and requirement stores
type Loader struct {
	versions     framework.Repository
	requirements Repository
}

// NewLoader creates a catalog loader
func NewLoader(versions framework.Repository, requirements Repository) *Loader {
	return &Loader{versions: versions, requirements: requirements}
}

// Load parses a catalog document and persists the framework version in
// published status together with its requirement set. The returned
// version is not active until explicitly activated.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*framework.Version, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewFromCode(errors.ErrCatalogParseFailed).WithCause(err)
	}

	var doc CatalogDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewFromCode(errors.ErrCatalogParseFailed).WithCause(err)
	}
	if doc.FrameworkID == "" || doc.VersionCode == "" {
		return nil, errors.ValidationError("catalog must declare framework_id and version_code")
	}

	version := framework.NewVersion(doc.FrameworkID, doc.VersionCode, doc.Name, doc.Published, doc.Effective)
	version.Status = types.VersionStatusPublished
	version.TransitionDeadline = doc.Transition

	// Link to the framework's newest prior version so comparisons can
	// walk the chain
	if prior, err := l.latestVersion(ctx, doc.FrameworkID); err == nil && prior != nil {
		version.PreviousVersionID = prior.ID
	}

	if err := l.versions.Create(ctx, version); err != nil {
		return nil, err
	}

	for _, cr := range doc.Requirements {
		req := &MasterRequirement{
			ID:                    uuid.NewString(),
			FrameworkVersionID:    version.ID,
			RequirementCode:       cr.Code,
			Title:                 cr.Title,
			OfficialText:          cr.Text,
			ImplementationLevel:   types.ImplementationLevel(cr.Level),
			RequiredEvidenceTypes: cr.EvidenceTypes,
			VerificationFrequency: types.VerificationFrequency(cr.Frequency),
			RiskWeight:            cr.RiskWeight,
			EmergingTechCategory:  cr.EmergingTech,
			Keywords:              cr.Keywords,
			EffectiveDate:         cr.Effective,
			CreatedAt:             time.Now().UTC(),
		}
		if req.EffectiveDate.IsZero() {
			req.EffectiveDate = doc.Effective
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		if err := l.requirements.Create(ctx, req); err != nil {
			return nil, err
		}
	}

	return version, nil
}

func (l *Loader) latestVersion(ctx context.Context, frameworkID string) (*framework.Version, error) {
	versions, err := l.versions.ListByFramework(ctx, frameworkID)
	if err != nil || len(versions) == 0 {
		return nil, err
	}
	latest := versions[0]
	for _, v := range versions[1:] {
		if v.EffectiveDate.After(latest.EffectiveDate) {
			latest = v
		}
	}
	return latest, nil
}
