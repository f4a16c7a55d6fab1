package handlers

import (
	"errors"
	"net/http"

	"adaptive-truth/internal/controller"
	"adaptive-truth/internal/logger"
	"adaptive-truth/internal/middleware"
	"adaptive-truth/internal/presentation"
	"adaptive-truth/internal/services"
	"adaptive-truth/internal/submission"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName holds the session UUID
	SessionCookieName = "adaptive_truth_session"
	// PageTitle is shown in the header and the browser tab
	PageTitle = "Adaptive Truth"
	// DefaultRefreshSeconds is how often the page reloads while Pending
	DefaultRefreshSeconds = 2
)

type ClaimHandler struct {
	sessions       services.SessionServiceInterface
	refreshSeconds int
	secureCookie   bool
}

func NewClaimHandler(sessions services.SessionServiceInterface) *ClaimHandler {
	return &ClaimHandler{
		sessions:       sessions,
		refreshSeconds: DefaultRefreshSeconds,
	}
}

// SubmitClaimRequest is the JSON body for POST /api/claims
type SubmitClaimRequest struct {
	Claim string `json:"claim"`
}

// Index renders the single page
func (h *ClaimHandler) Index(c *gin.Context) {
	session := h.session(c)
	snapshot := session.Snapshot()

	c.HTML(http.StatusOK, presentation.PageTemplateName, presentation.PageData{
		Title:   PageTitle,
		Draft:   snapshot.Draft,
		Loading: snapshot.Loading,
		// Without scripts the draft is only known after posting, so the
		// trigger follows the loading flag and empty posts are skipped
		CanSubmit:      !snapshot.Loading,
		ButtonLabel:    snapshot.ButtonLabel,
		Error:          snapshot.Error,
		Result:         snapshot.Result,
		RefreshSeconds: h.refreshSeconds,
	})
}

// SubmitClaim handles the page form and redirects back to the page
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	session := h.session(c)
	correlationID := getCorrelationID(c)

	forwarded, err := session.Submit(c.Request.Context(), c.PostForm("claim"))
	h.logSubmission(session.ID, correlationID, forwarded, err)

	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitClaimJSON is the JSON variant of SubmitClaim
func (h *ClaimHandler) SubmitClaimJSON(c *gin.Context) {
	session := h.session(c)
	correlationID := getCorrelationID(c)

	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be a JSON object with a claim field")
		return
	}

	forwarded, err := session.Submit(c.Request.Context(), req.Claim)
	h.logSubmission(session.ID, correlationID, forwarded, err)

	switch {
	case errors.Is(err, submission.ErrDisabled), errors.Is(err, controller.ErrRequestInFlight):
		writeError(c, http.StatusConflict, "REQUEST_IN_FLIGHT", "A verification is already pending")
		return
	case err != nil:
		writeError(c, http.StatusInternalServerError, "SUBMISSION_FAILED", err.Error())
		return
	}

	status := http.StatusOK
	if forwarded {
		status = http.StatusAccepted
	}
	c.JSON(status, session.Snapshot())
}

// ToggleEvidence flips the evidence details and redirects back to the page
func (h *ClaimHandler) ToggleEvidence(c *gin.Context) {
	session := h.session(c)
	expanded := session.ToggleEvidence()

	logger.WithSession(session.ID).WithField("expanded", expanded).Debug("Evidence details toggled")

	c.Redirect(http.StatusSeeOther, "/")
}

// Reset discards the session and its controller
func (h *ClaimHandler) Reset(c *gin.Context) {
	if id, err := c.Cookie(SessionCookieName); err == nil && id != "" {
		h.sessions.Reset(id)
		logger.WithSession(id).WithField("correlation_id", getCorrelationID(c)).Info("Session reset by user")
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookie, true)

	c.Redirect(http.StatusSeeOther, "/")
}

// State returns the session snapshot for polling
func (h *ClaimHandler) State(c *gin.Context) {
	session := h.session(c)
	c.JSON(http.StatusOK, session.Snapshot())
}

// session resolves the cookie to a live session, starting one if needed
func (h *ClaimHandler) session(c *gin.Context) *services.Session {
	id, _ := c.Cookie(SessionCookieName)
	session, created := h.sessions.GetOrCreate(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, session.ID, 0, "/", "", h.secureCookie, true)
	}
	c.Set(middleware.SessionIDKey, session.ID)
	return session
}

func (h *ClaimHandler) logSubmission(sessionID, correlationID string, forwarded bool, err error) {
	log := logger.WithSession(sessionID).WithField("correlation_id", correlationID)
	switch {
	case errors.Is(err, submission.ErrDisabled), errors.Is(err, controller.ErrRequestInFlight):
		log.Debug("Claim ignored, verification already pending")
	case err != nil:
		logger.LogErrorWithStackAndCorrelation(err, correlationID, map[string]interface{}{
			"session_id": sessionID,
			"operation":  "submit_claim",
		})
	case forwarded:
		log.Info("Claim submitted for verification")
	default:
		log.Debug("Empty claim skipped")
	}
}
