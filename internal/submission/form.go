package submission

import (
	"errors"
	"sync"

	"adaptive-truth/internal/logger"
	"adaptive-truth/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	LabelIdle    = "Verify Claim"
	LabelLoading = "Running Agentic Verification..."
)

// ErrDisabled is returned when the form is submitted while its trigger is disabled
var ErrDisabled = errors.New("submission disabled while a verification is pending")

// SubmitFunc receives a validated, trimmed claim
type SubmitFunc func(claim models.Claim) error

// LoadingFunc reports whether the owner is waiting on a verification
type LoadingFunc func() bool

// Form captures claim text and hands validated claims upward. It never
// performs I/O itself.
type Form struct {
	mu       sync.Mutex
	draft    string
	onSubmit SubmitFunc
	loading  LoadingFunc
	logger   *logrus.Logger
}

// NewForm creates a form wired to its owner's submit callback and loading probe
func NewForm(onSubmit SubmitFunc, loading LoadingFunc) *Form {
	if loading == nil {
		loading = func() bool { return false }
	}
	return &Form{
		onSubmit: onSubmit,
		loading:  loading,
		logger:   logger.Log,
	}
}

// SetDraft replaces the draft text. The input is disabled while loading, so
// edits are ignored then.
func (f *Form) SetDraft(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading() {
		return
	}
	f.draft = text
}

// Draft returns the current draft text. It is kept after submission so the
// user can still see what was sent.
func (f *Form) Draft() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Disabled reports whether the input and trigger are disabled
func (f *Form) Disabled() bool {
	return f.loading()
}

// CanSubmit mirrors the trigger state: enabled when not loading and the draft
// has content
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loading() {
		return false
	}
	_, err := models.NewClaim(f.draft)
	return err == nil
}

// ButtonLabel is the trigger text for the current state
func (f *Form) ButtonLabel() string {
	if f.loading() {
		return LabelLoading
	}
	return LabelIdle
}

// Submit forwards the trimmed draft to the owner. It reports whether a claim
// was forwarded. Whitespace-only drafts are skipped without an error.
func (f *Form) Submit() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitLocked()
}

// submitLocked must be called with f.mu held
func (f *Form) submitLocked() (bool, error) {
	if f.loading() {
		f.logger.Debug("Submission ignored, verification already pending")
		return false, ErrDisabled
	}

	claim, err := models.NewClaim(f.draft)
	if err != nil {
		f.logger.Debug("Submission skipped, claim is empty")
		return false, nil
	}

	if f.onSubmit == nil {
		return false, nil
	}
	if err := f.onSubmit(claim); err != nil {
		return false, err
	}
	return true, nil
}

// SubmitText sets the draft and submits it in one step. While loading the
// draft is left untouched and ErrDisabled is returned.
func (f *Form) SubmitText(text string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loading() {
		f.draft = text
	}
	return f.submitLocked()
}
