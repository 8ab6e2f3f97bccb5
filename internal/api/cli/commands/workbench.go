// Package commands implements the workbench subcommands. Each command
// rebuilds an in-memory environment from the catalog and workspace
// files it is given, runs one engine pass, and prints JSON.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/regtrace/regtrace/internal/domain/control"
	"github.com/regtrace/regtrace/internal/domain/crosswalk"
	"github.com/regtrace/regtrace/internal/domain/framework"
	"github.com/regtrace/regtrace/internal/domain/gap"
	"github.com/regtrace/regtrace/internal/domain/requirement"
	"github.com/regtrace/regtrace/internal/infrastructure/repository/memory"
	"github.com/regtrace/regtrace/internal/observability/logging"
	"github.com/regtrace/regtrace/pkg/types"
	"github.com/regtrace/regtrace/pkg/validator"
)

// workspaceDocument is the on-disk shape of the organization state
type workspaceDocument struct {
	Controls []workspaceControl `yaml:"controls" validate:"dive"`
	Answers  map[string]string  `yaml:"answers"`
	Mappings []workspaceMapping `yaml:"mappings" validate:"dive"`
}

type workspaceControl struct {
	ID        string   `yaml:"id" validate:"required"`
	Title     string   `yaml:"title"`
	Domain    string   `yaml:"domain"`
	RiskLevel string   `yaml:"risk_level" validate:"omitempty,oneof=low medium high critical"`
	Keywords  []string `yaml:"keywords,omitempty"`
}

type workspaceMapping struct {
	ControlID       string `yaml:"control_id" validate:"required"`
	RequirementCode string `yaml:"requirement_code" validate:"required"`
	Strength        string `yaml:"strength" validate:"oneof=direct partial supportive"`
	Coverage        int    `yaml:"coverage" validate:"coverage"`
}

// workbench is the in-memory environment the subcommands run against
type workbench struct {
	versions     framework.Repository
	requirements requirement.Repository
	library      requirement.Library
	loader       *requirement.Loader
	mappings     crosswalk.Repository
	gaps         gap.Repository
	controls     *memory.ControlRepository
	answers      control.AnswerMap
	validate     *validator.Validator
	logger       logging.Logger
}

func newWorkbench() *workbench {
	versions := memory.NewFrameworkRepository()
	requirements := memory.NewRequirementRepository()
	return &workbench{
		versions:     versions,
		requirements: requirements,
		library:      requirement.NewLibrary(requirements),
		loader:       requirement.NewLoader(versions, requirements),
		mappings:     memory.NewCrosswalkRepository(),
		gaps:         memory.NewGapRepository(),
		controls:     memory.NewControlRepository(),
		answers:      control.AnswerMap{},
		validate:     validator.New(),
		logger:       logging.NewNop(),
	}
}

// loadCatalog ingests one catalog file and returns its version
func (w *workbench) loadCatalog(ctx context.Context, path string) (*framework.Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	version, err := w.loader.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return version, nil
}

// loadWorkspace seeds controls, answers, and mappings. Mapping codes
// resolve against the given framework version.
func (w *workbench) loadWorkspace(ctx context.Context, path, frameworkVersionID string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open workspace %s: %w", path, err)
	}

	var doc workspaceDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse workspace %s: %w", path, err)
	}
	if err := w.validate.Struct(doc); err != nil {
		return fmt.Errorf("workspace %s: %w", path, err)
	}

	now := time.Now().UTC()
	for _, wc := range doc.Controls {
		w.controls.Seed(&control.Control{
			ID:        wc.ID,
			Title:     wc.Title,
			Domain:    wc.Domain,
			RiskLevel: types.RiskLevel(wc.RiskLevel),
			Keywords:  wc.Keywords,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	for controlID, value := range doc.Answers {
		w.answers[controlID] = control.Answer{
			ControlID:  controlID,
			Value:      types.NormalizeAnswer(value),
			AnsweredAt: now,
		}
	}

	for _, wm := range doc.Mappings {
		req, err := w.requirements.GetByCode(ctx, frameworkVersionID, wm.RequirementCode)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("workspace mapping references unknown requirement code %q", wm.RequirementCode)
		}
		mapping, err := crosswalk.NewMapping(wm.ControlID, req.ID, req.RequirementCode,
			frameworkVersionID, types.MappingStrength(wm.Strength), wm.Coverage)
		if err != nil {
			return err
		}
		if err := w.mappings.Create(ctx, mapping); err != nil {
			return err
		}
	}
	return nil
}

// printJSON renders any result as indented JSON on stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
