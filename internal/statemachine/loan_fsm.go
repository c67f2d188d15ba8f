package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/sjperalta/lendera-api/internal/models"
)

// Loan lifecycle events
const (
	EventApprove = "approve"
	EventFinish  = "finish"
	EventDelete  = "delete"
)

// ErrInvalidTransition is matched by every *InvalidTransitionError
var ErrInvalidTransition = errors.New("invalid transition")

// InvalidTransitionError is returned when an event is not allowed from the
// loan's current state. The loan is left unchanged.
type InvalidTransitionError struct {
	From   string
	Event  string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s loan in state %s: %s", e.Event, e.From, e.Reason)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Transition describes a completed state change
type Transition struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// LoanFSM wraps a loan with its state machine
type LoanFSM struct {
	loan *models.Loan
	fsm  *fsm.FSM
	now  func() time.Time
}

// NewLoanFSM creates a new loan state machine
func NewLoanFSM(loan *models.Loan) *LoanFSM {
	lfsm := &LoanFSM{
		loan: loan,
		now:  func() time.Time { return time.Now().UTC() },
	}

	lfsm.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// pending → active
			{Name: EventApprove, Src: []string{models.LoanStatusPending}, Dst: models.LoanStatusActive},

			// active → finished (schedule fully paid)
			{Name: EventFinish, Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusFinished},

			// pending → deleted (no payments recorded)
			{Name: EventDelete, Src: []string{models.LoanStatusPending}, Dst: models.LoanStatusDeleted},
		},
		fsm.Callbacks{
			"enter_" + models.LoanStatusActive: func(_ context.Context, _ *fsm.Event) {
				at := lfsm.now()
				lfsm.loan.ApprovedAt = &at
			},
			"enter_" + models.LoanStatusFinished: func(_ context.Context, _ *fsm.Event) {
				at := lfsm.now()
				lfsm.loan.FinishedAt = &at
			},
			"enter_" + models.LoanStatusDeleted: func(_ context.Context, _ *fsm.Event) {
				at := lfsm.now()
				lfsm.loan.DiscardedAt = &at
			},
		},
	)

	return lfsm
}

// Approve transitions the loan to active
func (l *LoanFSM) Approve(ctx context.Context) (*Transition, error) {
	if !l.loan.MayApprove() {
		return nil, l.invalid(EventApprove, "only pending loans can be approved")
	}
	return l.fire(ctx, EventApprove, "loan approved")
}

// Finish transitions the loan to finished. fullyPaid must come from a
// reconciliation pass over the loan's current payment history.
func (l *LoanFSM) Finish(ctx context.Context, fullyPaid bool) (*Transition, error) {
	if !l.loan.MayFinish() {
		return nil, l.invalid(EventFinish, "only active loans can be finished")
	}
	if !fullyPaid {
		return nil, l.invalid(EventFinish, "schedule is not fully paid")
	}
	return l.fire(ctx, EventFinish, "all installments satisfied")
}

// Delete discards a pending loan that has no recorded payments
func (l *LoanFSM) Delete(ctx context.Context, paymentCount int64) (*Transition, error) {
	if !l.loan.MayDelete() {
		return nil, l.invalid(EventDelete, "only pending loans can be deleted")
	}
	if paymentCount > 0 {
		return nil, l.invalid(EventDelete, fmt.Sprintf("loan has %d recorded payments", paymentCount))
	}
	return l.fire(ctx, EventDelete, "loan deleted")
}

func (l *LoanFSM) fire(ctx context.Context, event, reason string) (*Transition, error) {
	from := l.fsm.Current()
	if err := l.fsm.Event(ctx, event); err != nil {
		return nil, l.invalid(event, err.Error())
	}

	l.loan.Status = l.fsm.Current()
	return &Transition{
		From:   from,
		To:     l.loan.Status,
		Event:  event,
		Reason: reason,
	}, nil
}

func (l *LoanFSM) invalid(event, reason string) error {
	return &InvalidTransitionError{From: l.loan.Status, Event: event, Reason: reason}
}

// Current returns the current state
func (l *LoanFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible from the current state. Guards
// that need payment data are not evaluated.
func (l *LoanFSM) Can(event string) bool {
	return l.fsm.Can(event)
}

// AvailableEvents lists the events the current state allows
func (l *LoanFSM) AvailableEvents() []string {
	return l.fsm.AvailableTransitions()
}

// RecommendedEvent reports the transition a reconciliation outcome calls
// for, if any. Only a fully paid active loan has one.
func RecommendedEvent(status string, fullyPaid bool) (string, bool) {
	if status == models.LoanStatusActive && fullyPaid {
		return EventFinish, true
	}
	return "", false
}
