package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"adaptive-truth/internal/clients"
	"adaptive-truth/internal/config"
	"adaptive-truth/internal/middleware"
	"adaptive-truth/internal/models"
	"adaptive-truth/internal/presentation"
	"adaptive-truth/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockVerificationClient for testing
type MockVerificationClient struct {
	mock.Mock
}

func (m *MockVerificationClient) Verify(ctx context.Context, claim models.Claim) (*models.VerificationResult, error) {
	args := m.Called(ctx, claim)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationResult), args.Error(1)
}

func (m *MockVerificationClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type testApp struct {
	router   *gin.Engine
	client   *MockVerificationClient
	sessions *services.SessionService
	cookie   *http.Cookie
}

func setupTestApp(t *testing.T) *testApp {
	cfg := &config.Config{
		VerifyServiceURL:    "http://localhost:8000",
		VerifyTimeout:       5 * time.Second,
		EvidenceDisplayMode: config.DisplayModeCollapsed,
		SessionTTL:          time.Minute,
	}
	client := &MockVerificationClient{}
	sessions, err := services.NewSessionService(cfg, client)
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	router := gin.New()
	router.SetHTMLTemplate(presentation.MustTemplates())
	router.Use(middleware.RequestIDMiddleware())
	RegisterRoutes(router, NewClaimHandler(sessions), NewHealthHandler(client, sessions))

	return &testApp{router: router, client: client, sessions: sessions}
}

// do sends a request carrying the app's session cookie and remembers any new one
func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	recorder := httptest.NewRecorder()
	a.router.ServeHTTP(recorder, req)
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			if cookie.MaxAge < 0 {
				a.cookie = nil
			} else {
				a.cookie = cookie
			}
		}
	}
	return recorder
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *testApp) state(t *testing.T) services.Snapshot {
	t.Helper()
	recorder := a.get("/api/state")
	require.Equal(t, http.StatusOK, recorder.Code)
	var snapshot services.Snapshot
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	return snapshot
}

func (a *testApp) waitForPhase(t *testing.T, phase string) services.Snapshot {
	t.Helper()
	var snapshot services.Snapshot
	require.Eventually(t, func() bool {
		snapshot = a.state(t)
		return snapshot.Phase == phase
	}, 2*time.Second, 10*time.Millisecond)
	return snapshot
}

func queenResult() *models.VerificationResult {
	return &models.VerificationResult{
		Verdict:   "Refuted",
		Reasoning: "Queen Elizabeth II died in 2022.",
		Evidence: []models.EvidenceItem{
			{Source: "Local KB", Text: "Elizabeth II died on 8 September 2022.", Confidence: 0.92},
			{Source: "Web Search", Text: "Obituary", URL: "https://example.com/obit", Confidence: 0.8},
		},
	}
}

func TestClaimHandler_Index_NewSession(t *testing.T) {
	app := setupTestApp(t)

	recorder := app.get("/")

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, app.cookie, "a session cookie is issued")
	assert.True(t, app.cookie.HttpOnly)
	assert.Equal(t, 1, app.sessions.Count())

	body := recorder.Body.String()
	assert.Contains(t, body, "<title>Adaptive Truth</title>")
	assert.Contains(t, body, `action="/claims"`)
	assert.Contains(t, body, "Verify Claim")
	assert.NotContains(t, body, "error-card")
	assert.NotContains(t, body, "result-container")
	assert.NotContains(t, body, "http-equiv=\"refresh\"")

	app.get("/")
	assert.Equal(t, 1, app.sessions.Count(), "cookie is reused")
}

func TestClaimHandler_SubmitClaim_Success(t *testing.T) {
	app := setupTestApp(t)
	app.client.On("Verify", mock.Anything, models.Claim("The Queen is alive")).Return(queenResult(), nil)

	recorder := app.postForm("/claims", url.Values{"claim": {"  The Queen is alive "}})

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/", recorder.Header().Get("Location"))

	snapshot := app.waitForPhase(t, "succeeded")
	require.NotNil(t, snapshot.Result)
	assert.Equal(t, presentation.VerdictRefuted, snapshot.Result.VerdictClass)
	assert.True(t, snapshot.Result.HasWebSources)

	page := app.get("/").Body.String()
	assert.Contains(t, page, "status-badge status-refuted")
	assert.Contains(t, page, "Queen Elizabeth II died in 2022.")
	assert.Contains(t, page, "Live Web Search")
	assert.Contains(t, page, "View Source Details")
	assert.NotContains(t, page, "evidence-card", "evidence starts collapsed")
	assert.Contains(t, page, "The Queen is alive", "draft is kept")
}

func TestClaimHandler_SubmitClaim_ForwardsCorrelationID(t *testing.T) {
	app := setupTestApp(t)
	app.client.On("Verify", mock.MatchedBy(func(ctx context.Context) bool {
		return clients.CorrelationIDFromContext(ctx) == "corr-web-1"
	}), mock.Anything).Return(queenResult(), nil)

	req := httptest.NewRequest(http.MethodPost, "/claims", strings.NewReader("claim=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.CorrelationIDHeader, "corr-web-1")
	app.do(req)

	app.waitForPhase(t, "succeeded")
	app.client.AssertExpectations(t)
}

func TestClaimHandler_SubmitClaim_EmptyIsNoOp(t *testing.T) {
	app := setupTestApp(t)

	recorder := app.postForm("/claims", url.Values{"claim": {"   "}})

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "idle", app.state(t).Phase)
	app.client.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestClaimHandler_SubmitClaim_ServiceError(t *testing.T) {
	app := setupTestApp(t)
	app.client.On("Verify", mock.Anything, mock.Anything).Return(nil, clients.NewAPIError(500))

	app.postForm("/claims", url.Values{"claim": {"claim"}})

	snapshot := app.waitForPhase(t, "failed")
	assert.Equal(t, "Failed to verify claim", snapshot.Error)
	assert.Nil(t, snapshot.Result)
	assert.False(t, snapshot.Loading)

	page := app.get("/").Body.String()
	assert.Contains(t, page, "<strong>Error:</strong> Failed to verify claim")
	assert.NotContains(t, page, "result-container")
}

func TestClaimHandler_Pending(t *testing.T) {
	app := setupTestApp(t)
	release := make(chan struct{})
	app.client.On("Verify", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-release }).
		Return(queenResult(), nil).Once()

	app.postForm("/claims", url.Values{"claim": {"first"}})

	page := app.get("/").Body.String()
	assert.Contains(t, page, "Running Agentic Verification...")
	assert.Contains(t, page, `http-equiv="refresh"`)
	assert.Contains(t, page, "disabled")

	recorder := app.postForm("/claims", url.Values{"claim": {"second"}})
	assert.Equal(t, http.StatusSeeOther, recorder.Code)

	recorder = app.postJSON("/api/claims", `{"claim":"third"}`)
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "REQUEST_IN_FLIGHT")

	close(release)
	app.waitForPhase(t, "succeeded")
	app.client.AssertNumberOfCalls(t, "Verify", 1)
}

func TestClaimHandler_ToggleEvidence(t *testing.T) {
	app := setupTestApp(t)
	app.client.On("Verify", mock.Anything, mock.Anything).Return(queenResult(), nil)

	app.postForm("/claims", url.Values{"claim": {"The Queen is alive"}})
	app.waitForPhase(t, "succeeded")

	recorder := app.postForm("/evidence/toggle", nil)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)

	page := app.get("/").Body.String()
	assert.Contains(t, page, "Hide Source Details")
	assert.Contains(t, page, "evidence-card")
	assert.Contains(t, page, "📂 Local Knowledge")
	assert.Contains(t, page, "🌐 Web Search")
	assert.Contains(t, page, `href="https://example.com/obit" target="_blank" rel="noopener noreferrer"`)
	assert.Contains(t, page, "width: 92%")

	app.postForm("/evidence/toggle", nil)
	assert.NotContains(t, app.get("/").Body.String(), "evidence-card")
}

func TestClaimHandler_Reset(t *testing.T) {
	app := setupTestApp(t)
	app.get("/")
	require.NotNil(t, app.cookie)
	oldID := app.cookie.Value
	session, found := app.sessions.Get(oldID)
	require.True(t, found)

	recorder := app.postForm("/reset", nil)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Nil(t, app.cookie, "cookie is cleared")
	assert.True(t, session.Controller.Closed())
	_, found = app.sessions.Get(oldID)
	assert.False(t, found)

	app.get("/")
	require.NotNil(t, app.cookie)
	assert.NotEqual(t, oldID, app.cookie.Value)
}

func TestClaimHandler_State(t *testing.T) {
	app := setupTestApp(t)

	snapshot := app.state(t)

	assert.NotEmpty(t, snapshot.SessionID)
	assert.Equal(t, "idle", snapshot.Phase)
	assert.False(t, snapshot.Loading)
	assert.False(t, snapshot.CanSubmit)
	assert.Equal(t, "Verify Claim", snapshot.ButtonLabel)
	assert.Nil(t, snapshot.Result)
}

func TestClaimHandler_SubmitClaimJSON(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(client *MockVerificationClient)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "accepted",
			body: `{"claim":"The Queen is alive"}`,
			setupMock: func(client *MockVerificationClient) {
				client.On("Verify", mock.Anything, models.Claim("The Queen is alive")).Return(queenResult(), nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "empty claim is a no-op",
			body:           `{"claim":"  "}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid json",
			body:           `{"claim":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t)
			if tt.setupMock != nil {
				tt.setupMock(app.client)
			}

			recorder := app.postJSON("/api/claims", tt.body)

			assert.Equal(t, tt.expectedStatus, recorder.Code)
			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

			if tt.expectedCode != "" {
				errorObj := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedCode, errorObj["code"])
				assert.NotEmpty(t, errorObj["correlation_id"])
				return
			}
			assert.NotEmpty(t, response["session_id"])
			if tt.expectedStatus == http.StatusAccepted {
				app.waitForPhase(t, "succeeded")
			} else {
				assert.Equal(t, "idle", response["phase"])
			}
			app.client.AssertExpectations(t)
		})
	}
}
