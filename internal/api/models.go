// Package api exposes the dashboard HTTP API over Fiber.
package api

import (
	"github.com/studiokit/projectdesk/internal/project"
)

// ProblemDetail follows RFC 7807 for error responses.
type ProblemDetail struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Status   int      `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Instance string   `json:"instance,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// ListProjectsResponse wraps a filtered, sorted project listing.
type ListProjectsResponse struct {
	Projects []*project.Project  `json:"projects"`
	Total    int                 `json:"total"`
	Stats    project.StatsResult `json:"stats"`
}

// AnalyzeRequest selects the analysis depth.
type AnalyzeRequest struct {
	Depth project.AnalysisType `json:"depth"`
}

// AnalyzeResponse acknowledges a started analysis.
type AnalyzeResponse struct {
	ProjectID string               `json:"project_id"`
	Status    project.Status       `json:"status"`
	Depth     project.AnalysisType `json:"depth"`
}

// AddNoteRequest creates a note on a project.
type AddNoteRequest struct {
	Content string   `json:"content"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
}

// AddFileRequest records uploaded-file metadata on a project.
type AddFileRequest struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// SendMessageRequest posts a chat message.
type SendMessageRequest struct {
	Content   string `json:"content"`
	ProjectID string `json:"project_id,omitempty"`
}
