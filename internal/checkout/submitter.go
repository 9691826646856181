// Package checkout turns the cart into a remote order, at most one at a time.
package checkout

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/minimarket-client/internal/cart"
	"github.com/angelmondragon/minimarket-client/internal/storefront"
	"github.com/angelmondragon/minimarket-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
	"github.com/angelmondragon/minimarket-client/pkg/metrics"
	"github.com/google/uuid"
)

const DefaultSubmitTimeout = 15 * time.Second

var (
	ErrSubmissionPending = pkgerrors.New(pkgerrors.CodeStateConflict, "a submission is already in progress")
	ErrEmptyCart         = pkgerrors.New(pkgerrors.CodePrecondition, "cart is empty")
)

type cartState interface {
	Snapshot() cart.Snapshot
	Clear(ctx context.Context) error
}

type orderCreator interface {
	CreateOrder(ctx context.Context, req storefront.OrderRequest, idempotencyKey string) (storefront.OrderResult, error)
}

type userResolver interface {
	UserID(ctx context.Context) (string, error)
}

type outcomeRecorder interface {
	IncOutcome(outcome string)
	ObserveDuration(d time.Duration)
}

// Deps wires a Submitter. Recorder, Logger, Timeout, NewKey and Now are optional.
type Deps struct {
	Cart     cartState
	Orders   orderCreator
	Users    userResolver
	Notifier Notifier
	Recorder outcomeRecorder
	Logger   *logger.Logger
	Timeout  time.Duration
	NewKey   func() string
	Now      func() time.Time
}

// Submitter owns the submission state machine.
type Submitter struct {
	cart     cartState
	orders   orderCreator
	users    userResolver
	notifier Notifier
	recorder outcomeRecorder
	logg     *logger.Logger
	timeout  time.Duration
	newKey   func() string
	now      func() time.Time

	state atomic.Int32
}

func NewSubmitter(deps Deps) (*Submitter, error) {
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart required")
	}
	if deps.Orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user resolver required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NewCheckoutMetrics(nil)
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultSubmitTimeout
	}
	if deps.NewKey == nil {
		deps.NewKey = func() string { return uuid.NewString() }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Submitter{
		cart:     deps.Cart,
		orders:   deps.Orders,
		users:    deps.Users,
		notifier: deps.Notifier,
		recorder: deps.Recorder,
		logg:     deps.Logger,
		timeout:  deps.Timeout,
		newKey:   deps.NewKey,
		now:      deps.Now,
	}, nil
}

// State reports where the state machine currently is.
func (s *Submitter) State() enums.SubmissionState {
	return enums.SubmissionState(s.state.Load())
}

// Outcome is the resolved result of a submission.
type Outcome struct {
	State        enums.SubmissionState
	Notification Notification
	Err          error
}

// Submission is the handle for one in-flight attempt.
type Submission struct {
	ID       string
	Snapshot cart.Snapshot

	done    chan struct{}
	outcome Outcome
}

// Done is closed once the submission resolves.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Result returns the outcome once Done is closed.
func (s *Submission) Result() (Outcome, bool) {
	select {
	case <-s.done:
		return s.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the submission resolves or ctx ends. Ending ctx does not
// abort the submission.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Submit starts a submission of the current cart and returns without waiting
// for the backend. A second call while one is pending is rejected and sends
// nothing.
func (s *Submitter) Submit(ctx context.Context) (*Submission, error) {
	if !s.acquire() {
		s.recorder.IncOutcome(metrics.OutcomeRejected)
		return nil, ErrSubmissionPending
	}

	snapshot := s.cart.Snapshot()
	if snapshot.ItemCount() == 0 {
		s.state.Store(int32(enums.SubmissionIdle))
		s.recorder.IncOutcome(metrics.OutcomeEmpty)
		return nil, ErrEmptyCart
	}

	sub := &Submission{
		ID:       s.newKey(),
		Snapshot: snapshot,
		done:     make(chan struct{}),
	}
	ctx = s.logg.WithSubmissionID(context.WithoutCancel(ctx), sub.ID)
	s.logg.Info(s.logg.WithField(ctx, "items", snapshot.ItemCount()), "checkout submission started")

	go s.run(ctx, sub)
	return sub, nil
}

// acquire moves Idle to Pending. Succeeded and Failed are only held while
// the outcome is being published, so they also reject.
func (s *Submitter) acquire() bool {
	return s.state.CompareAndSwap(int32(enums.SubmissionIdle), int32(enums.SubmissionPending))
}

func (s *Submitter) run(ctx context.Context, sub *Submission) {
	defer close(sub.done)

	started := s.now()
	outcome := s.execute(ctx, sub)
	s.recorder.ObserveDuration(s.now().Sub(started))

	s.state.Store(int32(outcome.State))
	s.notifier.Notify(ctx, outcome.Notification)
	sub.outcome = outcome
	s.state.Store(int32(enums.SubmissionIdle))
}

func (s *Submitter) execute(ctx context.Context, sub *Submission) Outcome {
	total := sub.Snapshot.Total()
	base := Notification{SubmissionID: sub.ID, Total: total, At: s.now().UTC()}

	userID, err := s.users.UserID(ctx)
	if err != nil {
		return s.failed(ctx, base, err, "checkout aborted, no user id")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.orders.CreateOrder(callCtx, buildRequest(userID, sub.Snapshot), sub.ID)
	if err != nil {
		return s.failed(ctx, base, err, "order creation failed")
	}

	switch {
	case result.Accepted:
		if err := s.cart.Clear(ctx); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "order_id", result.OrderID), "order accepted but cart clear failed", err)
		}
		s.recorder.IncOutcome(metrics.OutcomeAccepted)
		s.logg.Info(s.logg.WithField(ctx, "order_id", result.OrderID), "checkout submission accepted")
		base.Kind, base.Title, base.Message, base.OrderID = NotifySuccess, successTitle, successMessage, result.OrderID
		return Outcome{State: enums.SubmissionSucceeded, Notification: base}

	case result.Kind == storefront.RejectionConflict:
		s.recorder.IncOutcome(metrics.OutcomeConflict)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"title": result.Title, "message": result.Message}), "checkout submission conflicted")
		base.Kind, base.Title, base.Message = NotifyConflict, result.Title, result.Message
		if base.Title == "" && base.Message == "" {
			base.Title, base.Message = failureTitle, failureMessage
		}
		return Outcome{
			State:        enums.SubmissionFailed,
			Notification: base,
			Err:          pkgerrors.New(pkgerrors.CodeConflict, result.Message),
		}

	default:
		cause := fmt.Errorf("status %d: %s %s", result.StatusCode, result.Title, result.Message)
		return s.failed(ctx, base, cause, "order rejected")
	}
}

func (s *Submitter) failed(ctx context.Context, base Notification, err error, msg string) Outcome {
	s.recorder.IncOutcome(metrics.OutcomeFailure)
	s.logg.Error(ctx, msg, err)
	base.Kind, base.Title, base.Message = NotifyFailure, failureTitle, failureMessage
	return Outcome{State: enums.SubmissionFailed, Notification: base, Err: err}
}

func buildRequest(userID string, snapshot cart.Snapshot) storefront.OrderRequest {
	lines := make([]storefront.OrderLine, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lines = append(lines, storefront.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return storefront.OrderRequest{UserID: userID, Lines: lines}
}
