package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"adaptive-truth/internal/clients"
	"adaptive-truth/internal/logger"
	"adaptive-truth/internal/models"

	"github.com/sirupsen/logrus"
)

var (
	// ErrRequestInFlight is returned when Submit is called while Pending
	ErrRequestInFlight = errors.New("a verification request is already pending")
	// ErrClosed is returned when Submit is called after Close
	ErrClosed = errors.New("controller is closed")
)

// Phase is a lifecycle state
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is an immutable snapshot of the lifecycle. At most one of Result and
// Error is set: Result only when Succeeded, Error only when Failed.
type State struct {
	Phase  Phase
	Result *models.VerificationResult
	Error  string
}

// IsLoading reports whether a verification is in progress
func (s State) IsLoading() bool {
	return s.Phase == PhasePending
}

// Verifier performs the single network call for one claim
type Verifier interface {
	Verify(ctx context.Context, claim models.Claim) (*models.VerificationResult, error)
}

// TransitionFunc observes every state change. It runs with the controller
// locked, so it must not call back into the controller.
type TransitionFunc func(from, to State)

// Option configures a Controller
type Option func(*Controller)

// WithObserver registers a transition observer
func WithObserver(fn TransitionFunc) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithLogger overrides the package logger
func WithLogger(l *logrus.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller owns the Idle/Pending/Succeeded/Failed state machine for one
// client. Only one request may be in flight at a time.
type Controller struct {
	mu         sync.Mutex
	verifier   Verifier
	state      State
	generation uint64
	closed     bool
	ctx        context.Context
	cancel     context.CancelFunc
	observer   TransitionFunc
	logger     *logrus.Logger
}

// New creates a controller in the Idle state. The verifier carries the
// service location; the controller itself knows no endpoint.
func New(verifier Verifier, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		verifier: verifier,
		state:    State{Phase: PhaseIdle},
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsLoading reports whether the controller is Pending
func (c *Controller) IsLoading() bool {
	return c.State().IsLoading()
}

// Submit moves to Pending, clears any prior result or error and starts the
// verification call. It does not block. The returned channel receives the
// settled state once, or is closed without a value if the controller is
// torn down before the call resolves.
//
// ctx contributes request-scoped values such as the correlation ID; its
// cancellation does not abort the call, which lives as long as the
// controller.
func (c *Controller) Submit(ctx context.Context, claim models.Claim) (<-chan State, error) {
	if claim == "" {
		return nil, models.ErrEmptyClaim
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state.Phase == PhasePending {
		c.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	c.generation++
	generation := c.generation
	c.transition(State{Phase: PhasePending})
	c.mu.Unlock()

	reqCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	unhook := context.AfterFunc(c.ctx, stop)

	done := make(chan State, 1)
	go func() {
		defer stop()
		defer unhook()
		c.run(reqCtx, generation, claim, done)
	}()

	return done, nil
}

// Close tears the controller down. Any call still in flight is cancelled and
// its eventual resolution is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
}

// Closed reports whether Close has been called
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) run(ctx context.Context, generation uint64, claim models.Claim, done chan<- State) {
	defer close(done)
	start := time.Now()
	correlationID := clients.CorrelationIDFromContext(ctx)

	result, err := c.verify(ctx, claim)
	if err == nil && result == nil {
		err = errors.New("verification service returned no result")
	}

	next := State{Phase: PhaseSucceeded, Result: result}
	if err != nil {
		next = State{Phase: PhaseFailed, Error: clients.UserMessage(err)}
	}

	c.mu.Lock()
	if c.closed || generation != c.generation {
		c.mu.Unlock()
		c.logger.WithFields(map[string]interface{}{
			"correlation_id": correlationID,
			"phase":          next.Phase.String(),
		}).Debug("Dropping verification outcome for a torn-down controller")
		return
	}
	c.transition(next)
	c.mu.Unlock()

	fields := map[string]interface{}{
		"correlation_id": correlationID,
		"phase":          next.Phase.String(),
		"duration_ms":    time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Warn("Claim verification failed")
	} else {
		fields["verdict"] = result.Verdict
		c.logger.WithFields(fields).Info("Claim verification succeeded")
	}

	done <- next
}

// verify calls the verifier and turns a panic into an error so Pending is
// always left
func (c *Controller) verify(ctx context.Context, claim models.Claim) (result *models.VerificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogErrorWithStack(fmt.Errorf("verifier panicked: %v", r), map[string]interface{}{
				"operation": "verify_claim",
			})
			result = nil
			err = fmt.Errorf("verification failed unexpectedly: %v", r)
		}
	}()
	return c.verifier.Verify(ctx, claim)
}

// transition must be called with c.mu held
func (c *Controller) transition(next State) {
	prev := c.state
	c.state = next
	if c.observer != nil {
		c.observer(prev, next)
	}
}
