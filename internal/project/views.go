package project

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Criteria narrows a project collection. Zero values match everything:
// an empty SearchTerm skips text matching, and Status/Type accept the
// literal "all" (or empty) as a wildcard.
type Criteria struct {
	SearchTerm string `json:"search_term"`
	Status     string `json:"status"`
	Type       string `json:"type"`
}

// SortField names a sortable project attribute.
type SortField string

const (
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByProgress  SortField = "progress"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// StatsResult holds aggregate counts over a project collection.
// Active covers draft and analyzing projects.
type StatsResult struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Errors    int `json:"errors"`
}

// ValidationResult reports every business rule a create input violates.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Views computes derived projections of a project collection. Every method
// is a pure function of its arguments: inputs are never mutated, and
// malformed input degrades to an empty result instead of failing. The UI
// depends on these never returning an error.
type Views struct {
	logger zerolog.Logger
}

// NewViews creates a derived-view engine.
func NewViews(logger zerolog.Logger) *Views {
	return &Views{logger: logger.With().Str("component", "project.views").Logger()}
}

func wildcard(v string) bool {
	return v == "" || v == "all"
}

// Filter returns the subsequence of projects matching all criteria.
// Search is a case-insensitive substring match against name, description,
// and tags. Nil elements are skipped.
func (v *Views) Filter(projects []*Project, c Criteria) []*Project {
	if projects == nil {
		v.logger.Debug().Msg("filter called with nil collection")
		return []*Project{}
	}

	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))
	out := make([]*Project, 0, len(projects))
	for _, p := range projects {
		if p == nil {
			v.logger.Warn().Msg("skipping nil project in filter input")
			continue
		}
		if !wildcard(c.Status) && string(p.Status) != c.Status {
			continue
		}
		if !wildcard(c.Type) && string(p.Type) != c.Type {
			continue
		}
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTerm(p *Project, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Sort returns a new slice ordered by the requested field. Ties keep their
// relative input order. An unknown field returns the input order unchanged.
func (v *Views) Sort(projects []*Project, field SortField, order SortOrder) []*Project {
	if projects == nil {
		v.logger.Debug().Msg("sort called with nil collection")
		return []*Project{}
	}

	out := append([]*Project(nil), projects...)

	var less func(a, b *Project) bool
	switch field {
	case SortByName:
		less = func(a, b *Project) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortByCreatedAt:
		less = func(a, b *Project) bool { return a.CreatedAt < b.CreatedAt }
	case SortByUpdatedAt:
		less = func(a, b *Project) bool { return a.UpdatedAt < b.UpdatedAt }
	case SortByProgress:
		less = func(a, b *Project) bool { return a.Progress < b.Progress }
	default:
		v.logger.Debug().Str("field", string(field)).Msg("unknown sort field, keeping input order")
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a == nil || b == nil {
			// nil entries sink to the end regardless of order
			return b == nil && a != nil
		}
		if order == OrderDesc {
			return less(b, a)
		}
		return less(a, b)
	})
	return out
}

// Stats counts projects per status bucket. Elements with missing or unknown
// status count toward the total only.
func (v *Views) Stats(projects []*Project) StatsResult {
	var r StatsResult
	if projects == nil {
		v.logger.Debug().Msg("stats called with nil collection")
		return r
	}
	for _, p := range projects {
		if p == nil {
			v.logger.Warn().Msg("skipping nil project in stats input")
			continue
		}
		r.Total++
		switch p.Status {
		case StatusDraft, StatusAnalyzing:
			r.Active++
		case StatusComplete:
			r.Completed++
		case StatusError:
			r.Errors++
		}
	}
	return r
}

// Validate checks a create input against the business rules, collecting
// every violation rather than stopping at the first.
func (v *Views) Validate(input CreateProjectInput) ValidationResult {
	var errs []string
	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		errs = append(errs, "description is required")
	}
	if input.Type == "" {
		errs = append(errs, "type is required")
	} else if !input.Type.Valid() {
		errs = append(errs, "type must be one of web, mobile, desktop, ai, research, other")
	}
	if input.Tags == nil {
		errs = append(errs, "tags must be a list")
	}
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}
