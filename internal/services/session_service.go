package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"adaptive-truth/internal/config"
	"adaptive-truth/internal/controller"
	"adaptive-truth/internal/logger"
	"adaptive-truth/internal/models"
	"adaptive-truth/internal/presentation"
	"adaptive-truth/internal/submission"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// SessionServiceInterface defines the interface for session store operations
type SessionServiceInterface interface {
	GetOrCreate(sessionID string) (*Session, bool)
	Get(sessionID string) (*Session, bool)
	Reset(sessionID string)
	Count() int
	Close()
}

// Session is one browser's client instance: its controller, form and presenter
type Session struct {
	ID         string
	Controller *controller.Controller
	Form       *submission.Form
	Presenter  *presentation.Presenter

	submitMu  sync.Mutex
	submitCtx context.Context
}

// Snapshot is the polling view of a session
type Snapshot struct {
	SessionID   string                   `json:"session_id"`
	Phase       string                   `json:"phase"`
	Draft       string                   `json:"draft"`
	Loading     bool                     `json:"loading"`
	CanSubmit   bool                     `json:"can_submit"`
	ButtonLabel string                   `json:"button_label"`
	Error       string                   `json:"error,omitempty"`
	Result      *presentation.ResultView `json:"result,omitempty"`
}

func newSession(id string, verifier controller.Verifier, mode presentation.EvidenceDisplayMode, log *logrus.Logger) *Session {
	s := &Session{
		ID:        id,
		Presenter: presentation.NewPresenter(mode),
	}
	s.Controller = controller.New(verifier,
		controller.WithLogger(log),
		controller.WithObserver(func(from, to controller.State) {
			log.WithFields(logrus.Fields{
				"session_id": id,
				"from":       from.Phase.String(),
				"to":         to.Phase.String(),
			}).Debug("Verification state changed")
		}),
	)
	s.Form = submission.NewForm(s.startVerification, s.Controller.IsLoading)
	return s
}

// Submit sets the draft and, when it holds a claim, starts a verification.
// ctx supplies request-scoped values such as the correlation ID.
func (s *Session) Submit(ctx context.Context, text string) (bool, error) {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	s.submitCtx = ctx
	defer func() { s.submitCtx = nil }()
	return s.Form.SubmitText(text)
}

// startVerification runs under submitMu via Form.Submit
func (s *Session) startVerification(claim models.Claim) error {
	ctx := s.submitCtx
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := s.Controller.Submit(ctx, claim)
	return err
}

// ToggleEvidence flips the evidence details for the current result
func (s *Session) ToggleEvidence() bool {
	return s.Presenter.Toggle()
}

// Snapshot renders the session's current state
func (s *Session) Snapshot() Snapshot {
	state := s.Controller.State()
	return Snapshot{
		SessionID:   s.ID,
		Phase:       state.Phase.String(),
		Draft:       s.Form.Draft(),
		Loading:     state.IsLoading(),
		CanSubmit:   s.Form.CanSubmit(),
		ButtonLabel: s.Form.ButtonLabel(),
		Error:       state.Error,
		Result:      s.Presenter.Render(state.Result),
	}
}

type SessionService struct {
	// mu orders expiry refreshes against eviction callbacks
	mu       sync.Mutex
	sessions *cache.Cache
	verifier controller.Verifier
	mode     presentation.EvidenceDisplayMode
	logger   *logrus.Logger
}

func NewSessionService(cfg *config.Config, verifier controller.Verifier) (*SessionService, error) {
	mode, err := presentation.ParseDisplayMode(cfg.EvidenceDisplayMode)
	if err != nil {
		return nil, fmt.Errorf("invalid evidence display mode: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be positive, got %s", cfg.SessionTTL)
	}

	cleanupInterval := cfg.SessionTTL
	if cleanupInterval > time.Minute {
		cleanupInterval = time.Minute
	}

	s := &SessionService{
		sessions: cache.New(cfg.SessionTTL, cleanupInterval),
		verifier: verifier,
		mode:     mode,
		logger:   logger.Log,
	}
	s.sessions.OnEvicted(s.onEvicted)
	return s, nil
}

// GetOrCreate returns the live session for sessionID, refreshing its TTL, or
// starts a new one under a fresh ID. The bool reports whether it was created.
func (s *SessionService) GetOrCreate(sessionID string) (*Session, bool) {
	if session, ok := s.Get(sessionID); ok {
		return session, false
	}

	// Expired IDs are never reused so the janitor still closes their controllers
	for {
		session := newSession(uuid.NewString(), s.verifier, s.mode, s.logger)
		if err := s.sessions.Add(session.ID, session, cache.DefaultExpiration); err != nil {
			session.Controller.Close()
			continue
		}
		s.logger.WithField("session_id", session.ID).Info("Session created")
		return session, true
	}
}

// Get returns a live session and slides its expiry. A session whose
// controller has been closed is treated as gone.
func (s *SessionService) Get(sessionID string) (*Session, bool) {
	if sessionID == "" {
		return nil, false
	}

	s.mu.Lock()
	item, found := s.sessions.Get(sessionID)
	session, ok := item.(*Session)
	if !found || !ok {
		s.mu.Unlock()
		return nil, false
	}
	if session.Controller.Closed() {
		s.mu.Unlock()
		// Delete runs onEvicted synchronously, which takes s.mu
		s.sessions.Delete(sessionID)
		return nil, false
	}
	s.sessions.Set(sessionID, session, cache.DefaultExpiration)
	s.mu.Unlock()
	return session, true
}

// Reset discards a session and tears down its controller
func (s *SessionService) Reset(sessionID string) {
	if sessionID == "" {
		return
	}
	s.sessions.Delete(sessionID)
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	return s.sessions.ItemCount()
}

// Close tears down every session
func (s *SessionService) Close() {
	s.sessions.DeleteExpired()
	for id := range s.sessions.Items() {
		s.sessions.Delete(id)
	}
}

func (s *SessionService) onEvicted(sessionID string, value interface{}) {
	session, ok := value.(*Session)
	if !ok {
		return
	}

	s.mu.Lock()
	// Get re-inserted the entry after the janitor removed it
	if current, found := s.sessions.Get(sessionID); found && current == value {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	session.Controller.Close()
	s.logger.WithField("session_id", sessionID).Info("Session closed")
}
