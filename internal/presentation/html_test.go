package presentation

import (
	"bytes"
	"testing"

	"adaptive-truth/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, data PageData) string {
	t.Helper()
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, tmpl, data))
	return buf.String()
}

func TestRenderPage_Idle(t *testing.T) {
	page := renderPage(t, PageData{
		Title:       "Adaptive Truth",
		CanSubmit:   false,
		ButtonLabel: "Verify Claim",
	})

	assert.Contains(t, page, "<h1>Adaptive Truth</h1>")
	assert.Contains(t, page, `action="/claims"`)
	assert.Contains(t, page, "Verify Claim")
	assert.NotContains(t, page, "result-container")
	assert.NotContains(t, page, "Error:")
	assert.NotContains(t, page, "http-equiv")
}

func TestRenderPage_Pending(t *testing.T) {
	page := renderPage(t, PageData{
		Title:          "Adaptive Truth",
		Draft:          "The Queen is alive",
		Loading:        true,
		ButtonLabel:    "Running Agentic Verification...",
		RefreshSeconds: 1,
	})

	assert.Contains(t, page, `http-equiv="refresh"`)
	assert.Contains(t, page, "The Queen is alive</textarea>")
	assert.Contains(t, page, " disabled>")
	assert.Contains(t, page, "Running Agentic Verification...")
}

func TestRenderPage_Error(t *testing.T) {
	page := renderPage(t, PageData{
		Title: "Adaptive Truth",
		Error: "Failed to verify claim",
	})

	assert.Contains(t, page, "<strong>Error:</strong> Failed to verify claim")
	assert.NotContains(t, page, "result-container")
}

func TestRenderPage_ResultExpanded(t *testing.T) {
	result := queenResult()
	result.Evidence = append(result.Evidence, models.EvidenceItem{
		Source:     "Web Search",
		Text:       "Obituary <em>published</em>",
		URL:        "https://example.com/obit",
		Confidence: 1.4,
	})

	page := renderPage(t, PageData{
		Title:  "Adaptive Truth",
		Result: BuildResultView(result, true),
	})

	assert.Contains(t, page, `class="status-badge status-refuted"`)
	assert.Contains(t, page, "📂 Local Knowledge")
	assert.Contains(t, page, "🌐 Web Search")
	assert.Contains(t, page, "width: 92%")
	assert.Contains(t, page, "width: 100%")
	assert.Contains(t, page, `href="https://example.com/obit"`)
	assert.Contains(t, page, `target="_blank"`)
	assert.Contains(t, page, `rel="noopener noreferrer"`)
	assert.Contains(t, page, "Obituary published")
	assert.NotContains(t, page, "<em>")
	assert.Contains(t, page, "Live Web Search")
}

func TestRenderPage_ResultCollapsed(t *testing.T) {
	view := BuildResultView(queenResult(), false)
	view.Collapsible = true

	page := renderPage(t, PageData{Title: "Adaptive Truth", Result: view})

	assert.Contains(t, page, "Local Database")
	assert.Contains(t, page, "View Source Details")
	assert.Contains(t, page, `action="/evidence/toggle"`)
	assert.NotContains(t, page, "evidence-card")
}

func TestRenderPage_EscapesUserText(t *testing.T) {
	page := renderPage(t, PageData{
		Title: "Adaptive Truth",
		Draft: `</textarea><script>alert("x")</script>`,
	})

	assert.NotContains(t, page, "<script>alert")
	assert.Contains(t, page, "&lt;/textarea&gt;")
}
