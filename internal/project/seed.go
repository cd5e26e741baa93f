package project

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Projects []seedProject `yaml:"projects"`
}

type seedProject struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Status      string      `yaml:"status"`
	Type        string      `yaml:"type"`
	Tags        []string    `yaml:"tags"`
	Progress    int         `yaml:"progress"`
	Metrics     seedMetrics `yaml:"metrics"`
}

type seedMetrics struct {
	ComplexityScore    int      `yaml:"complexity_score"`
	EstimatedHours     int      `yaml:"estimated_hours"`
	RiskLevel          string   `yaml:"risk_level"`
	SuccessProbability int      `yaml:"success_probability"`
	Resources          []string `yaml:"resources"`
}

// loadSeed parses the embedded demo dataset into fresh Project records.
// Each call returns new copies so a prior session cannot leak mutations
// into the next Initialize.
func loadSeed(now int64) ([]*Project, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return nil, fmt.Errorf("parsing seed dataset: %w", err)
	}

	projects := make([]*Project, 0, len(f.Projects))
	for _, sp := range f.Projects {
		status := Status(sp.Status)
		if !status.Valid() {
			status = StatusDraft
		}
		typ := Type(sp.Type)
		if !typ.Valid() {
			typ = TypeOther
		}
		projects = append(projects, &Project{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			Status:      status,
			Type:        typ,
			Tags:        append([]string(nil), sp.Tags...),
			Progress:    sp.Progress,
			Files:       []ProjectFile{},
			Notes:       []Note{},
			Metrics: ProjectMetrics{
				ComplexityScore:    sp.Metrics.ComplexityScore,
				EstimatedHours:     sp.Metrics.EstimatedHours,
				RiskLevel:          sp.Metrics.RiskLevel,
				SuccessProbability: sp.Metrics.SuccessProbability,
				Resources:          append([]string(nil), sp.Metrics.Resources...),
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return projects, nil
}
