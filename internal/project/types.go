// Package project holds the in-memory project collection, its derived views,
// and the mock analysis workflow.
package project

// Status is the lifecycle state of a project.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusAnalyzing Status = "analyzing"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusAnalyzing, StatusComplete, StatusError:
		return true
	}
	return false
}

// Label returns the human-readable name for the status.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusAnalyzing:
		return "Analyzing"
	case StatusComplete:
		return "Complete"
	case StatusError:
		return "Error"
	}
	return "Unknown"
}

// Type categorizes a project by its target platform or discipline.
type Type string

const (
	TypeWeb      Type = "web"
	TypeMobile   Type = "mobile"
	TypeDesktop  Type = "desktop"
	TypeAI       Type = "ai"
	TypeResearch Type = "research"
	TypeOther    Type = "other"
)

// Valid reports whether t is one of the known project types.
func (t Type) Valid() bool {
	switch t {
	case TypeWeb, TypeMobile, TypeDesktop, TypeAI, TypeResearch, TypeOther:
		return true
	}
	return false
}

// Label returns the human-readable name for the type.
func (t Type) Label() string {
	switch t {
	case TypeWeb:
		return "Web App"
	case TypeMobile:
		return "Mobile App"
	case TypeDesktop:
		return "Desktop App"
	case TypeAI:
		return "AI / ML"
	case TypeResearch:
		return "Research"
	case TypeOther:
		return "Other"
	}
	return "Unknown"
}

// Sentiment is the overall tone of an analysis result.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ComplexityLevel buckets a project's estimated complexity.
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

// AnalysisType distinguishes a quick first pass from a deep evaluation.
type AnalysisType string

const (
	AnalysisInitial AnalysisType = "initial"
	AnalysisDeep    AnalysisType = "deep"
)

// NoteType identifies the author kind of a note.
type NoteType string

const (
	NoteUser NoteType = "user"
	NoteAI   NoteType = "ai"
)

// Project represents one tracked initiative.
type Project struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Type        Type           `json:"type"`
	Tags        []string       `json:"tags"`
	Progress    int            `json:"progress"` // 0-100
	Files       []ProjectFile  `json:"files"`
	Notes       []Note         `json:"notes"`
	Analysis    *Analysis      `json:"analysis,omitempty"`
	Metrics     ProjectMetrics `json:"metrics"`
	CreatedAt   int64          `json:"created_at"`
	UpdatedAt   int64          `json:"updated_at"`
}

// Analysis is the most recent AI-evaluation result for a project.
// It is replaced wholesale by each analyze run, never mutated in place.
type Analysis struct {
	Type            AnalysisType    `json:"type"`
	Keywords        []string        `json:"keywords"`
	Summary         string          `json:"summary"`
	Sentiment       Sentiment       `json:"sentiment"`
	Recommendations []string        `json:"recommendations"`
	Confidence      int             `json:"confidence"`      // 75-95
	TechnicalScore  int             `json:"technical_score"` // 70-95
	ComplexityLevel ComplexityLevel `json:"complexity_level"`
	CompletedAt     int64           `json:"completed_at"`
}

// ProjectMetrics holds planning estimates set at creation time.
// The core never recomputes these.
type ProjectMetrics struct {
	ComplexityScore    int      `json:"complexity_score"`
	EstimatedHours     int      `json:"estimated_hours"`
	RiskLevel          string   `json:"risk_level"`
	SuccessProbability int      `json:"success_probability"`
	Resources          []string `json:"resources"`
}

// Note is a free-text annotation attached to a project.
type Note struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Type      NoteType `json:"type"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"created_at"`
}

// ProjectFile is the metadata record for an uploaded artifact. Upload and
// download are handled elsewhere; the store only tracks the record.
type ProjectFile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	Processed  bool   `json:"processed"`
	UploadedAt int64  `json:"uploaded_at"`
}

// CreateProjectInput holds the parameters for creating a new project.
type CreateProjectInput struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        Type           `json:"type"`
	Tags        []string       `json:"tags"`
	Metrics     ProjectMetrics `json:"metrics"`
}

// UpdateProjectInput holds the parameters for patching a project.
// Nil fields are left untouched.
type UpdateProjectInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Type        *Type     `json:"type,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Progress    *int      `json:"progress,omitempty"`
}

// Clone returns a deep copy of the project, safe to hand to readers
// without exposing store-owned slices.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Files = append([]ProjectFile(nil), p.Files...)
	cp.Metrics.Resources = append([]string(nil), p.Metrics.Resources...)
	cp.Notes = make([]Note, len(p.Notes))
	for i, n := range p.Notes {
		n.Tags = append([]string(nil), n.Tags...)
		cp.Notes[i] = n
	}
	if p.Analysis != nil {
		a := *p.Analysis
		a.Keywords = append([]string(nil), p.Analysis.Keywords...)
		a.Recommendations = append([]string(nil), p.Analysis.Recommendations...)
		cp.Analysis = &a
	}
	return &cp
}
