package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_New(t *testing.T) {
	m := New()
	assert.NotNil(t, m.RequestsTotal)
	assert.NotNil(t, m.AnalysesTotal)
	assert.NotNil(t, m.ChatMessages)
	assert.NotNil(t, m.ErrorsTotal)
	assert.NotNil(t, m.ProjectsTracked)
}

func TestMetrics_RecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest("projects.list", "200")
	m.RecordRequest("projects.list", "200")
	m.RecordRequest("chat.send", "400")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `projectdesk_requests_total{route="projects.list",status="200"} 2`)
	assert.Contains(t, body, `projectdesk_requests_total{route="chat.send",status="400"} 1`)
}

func TestMetrics_RecordAnalysis(t *testing.T) {
	m := New()
	m.RecordAnalysis("initial", "complete")
	m.RecordAnalysis("deep", "error")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `projectdesk_analyses_total{depth="initial",result="complete"} 1`)
	assert.Contains(t, body, `projectdesk_analyses_total{depth="deep",result="error"} 1`)
}

func TestMetrics_RecordChatMessage(t *testing.T) {
	m := New()
	m.RecordChatMessage("user")
	m.RecordChatMessage("ai")
	m.RecordChatMessage("ai")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `projectdesk_chat_messages_total{role="ai"} 2`)
}

func TestMetrics_SetProjectsTracked(t *testing.T) {
	m := New()
	m.SetProjectsTracked(7)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, "projectdesk_projects_tracked 7")
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveAnalysisDuration(1.2)
	m.ObserveRequestDuration("projects.get", 0.05)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "projectdesk_analysis_duration_seconds")
}

func getMetricsBody(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	return strings.TrimSpace(string(body))
}
