// Package requirement provides the read-side library over the versioned
// requirement catalog.
package requirement

import (
	"context"
	"strings"
)

// Library exposes the requirement catalog to the engine and dashboards
type Library interface {
	// RequirementsForVersion returns the version's requirement set keyed
	// by requirement code
	RequirementsForVersion(ctx context.Context, frameworkVersionID string) (map[string]*MasterRequirement, error)

	// Search performs a case-insensitive substring match over code,
	// title, official text and keywords. An empty framework version ID
	// searches every version.
	Search(ctx context.Context, query, frameworkVersionID string) ([]*MasterRequirement, error)

	// Get retrieves one requirement by ID
	Get(ctx context.Context, id string) (*MasterRequirement, error)
}

type library struct {
	repo Repository
}

// NewLibrary creates the requirement library
func NewLibrary(repo Repository) Library {
	return &library{repo: repo}
}

// RequirementsForVersion returns the version's requirements keyed by code
func (l *library) RequirementsForVersion(ctx context.Context, frameworkVersionID string) (map[string]*MasterRequirement, error) {
	reqs, err := l.repo.ListByVersion(ctx, frameworkVersionID)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]*MasterRequirement, len(reqs))
	for _, r := range reqs {
		byCode[r.RequirementCode] = r
	}
	return byCode, nil
}

// Search matches the query as a case-insensitive substring of the
// requirement code, title, official text, or any keyword.
func (l *library) Search(ctx context.Context, query, frameworkVersionID string) ([]*MasterRequirement, error) {
	var (
		reqs []*MasterRequirement
		err  error
	)
	if frameworkVersionID != "" {
		reqs, err = l.repo.ListByVersion(ctx, frameworkVersionID)
	} else {
		reqs, err = l.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return reqs, nil
	}

	matched := make([]*MasterRequirement, 0)
	for _, r := range reqs {
		if matchesRequirement(r, needle) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// Get retrieves one requirement by ID
func (l *library) Get(ctx context.Context, id string) (*MasterRequirement, error) {
	return l.repo.GetByID(ctx, id)
}

func matchesRequirement(r *MasterRequirement, needle string) bool {
	if strings.Contains(strings.ToLower(r.RequirementCode), needle) ||
		strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.OfficialText), needle) {
		return true
	}
	for _, kw := range r.Keywords {
		if strings.Contains(strings.ToLower(kw), needle) {
			return true
		}
	}
	return false
}
