// Package reconciliation matches a loan's payment history against its
// amortization schedule using waterfall allocation.
package reconciliation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/amortization"
)

// DefaultEpsilon is the shortfall tolerated when deciding an installment is satisfied
var DefaultEpsilon = decimal.New(1, -2)

// PaymentEvent is one recorded payment. History is append-only.
type PaymentEvent struct {
	ID                         string          `json:"id"`
	LoanID                     uint            `json:"loan_id"`
	Amount                     decimal.Decimal `json:"amount"`
	PaidAt                     time.Time       `json:"paid_at"`
	Method                     string          `json:"method"`
	MatchedInstallmentSequence *int            `json:"matched_installment_sequence,omitempty"`
}

// InstallmentStatus describes how much of an installment has been covered
type InstallmentStatus string

const (
	StatusUnpaid    InstallmentStatus = "unpaid"
	StatusPartial   InstallmentStatus = "partial"
	StatusSatisfied InstallmentStatus = "satisfied"
)

// InstallmentState is a scheduled installment plus what has been applied to it
type InstallmentState struct {
	amortization.Installment
	Applied     decimal.Decimal   `json:"applied"`
	Remaining   decimal.Decimal   `json:"remaining"`
	Status      InstallmentStatus `json:"status"`
	SatisfiedAt *time.Time        `json:"satisfied_at,omitempty"`
}

// Allocation is the slice of one payment applied to one installment
type Allocation struct {
	PaymentID string          `json:"payment_id"`
	Sequence  int             `json:"sequence"`
	Amount    decimal.Decimal `json:"amount"`
}

// Result is the derived, read-only view of a loan after a reconciliation pass
type Result struct {
	Installments       []InstallmentState `json:"installments"`
	Allocations        []Allocation       `json:"allocations"`
	TotalPaid          decimal.Decimal    `json:"total_paid"`
	OutstandingBalance decimal.Decimal    `json:"outstanding_balance"`
	NextDue            *InstallmentState  `json:"next_due,omitempty"`
	IsFullyPaid        bool               `json:"is_fully_paid"`
	Overpayments       []Overpayment      `json:"overpayments,omitempty"`
}

// Reconciler holds the matching policy. The zero value is not usable; use New.
type Reconciler struct {
	epsilon decimal.Decimal
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithEpsilon overrides the satisfaction tolerance
func WithEpsilon(epsilon decimal.Decimal) Option {
	return func(r *Reconciler) {
		if !epsilon.IsNegative() {
			r.epsilon = epsilon
		}
	}
}

// New creates a Reconciler
func New(opts ...Option) *Reconciler {
	r := &Reconciler{epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Epsilon returns the configured tolerance
func (r *Reconciler) Epsilon() decimal.Decimal {
	return r.epsilon
}

// Reconcile reconciles with the default policy
func Reconcile(schedule *amortization.Schedule, payments []PaymentEvent) (*Result, error) {
	return New().Reconcile(schedule, payments)
}

// ValidatePayment checks a single payment in isolation
func ValidatePayment(p PaymentEvent) error {
	switch {
	case p.ID == "":
		return &InvalidPaymentError{Reason: "missing payment id"}
	case p.LoanID == 0:
		return &InvalidPaymentError{PaymentID: p.ID, Reason: "missing loan reference"}
	case !p.Amount.IsPositive():
		return &InvalidPaymentError{PaymentID: p.ID, Reason: "amount must be greater than zero"}
	case p.PaidAt.IsZero():
		return &InvalidPaymentError{PaymentID: p.ID, Reason: "missing payment date"}
	}
	return nil
}

// Reconcile applies payments to the schedule in due-date order.
//
// Invalid payments abort the pass with an *InvalidPaymentError and no result.
// Funds left over after every installment is satisfied are reported through
// an *OverpaymentError returned alongside a complete Result.
func (r *Reconciler) Reconcile(schedule *amortization.Schedule, payments []PaymentEvent) (*Result, error) {
	if schedule == nil || len(schedule.Installments) == 0 {
		return nil, &amortization.InvalidLoanTermsError{Field: "schedule", Reason: "is empty"}
	}
	if err := validateHistory(payments); err != nil {
		return nil, err
	}

	// Private snapshot, ordered by payment date
	history := make([]PaymentEvent, len(payments))
	copy(history, payments)
	sort.SliceStable(history, func(i, j int) bool {
		if history[i].PaidAt.Equal(history[j].PaidAt) {
			return history[i].ID < history[j].ID
		}
		return history[i].PaidAt.Before(history[j].PaidAt)
	})

	states := make([]InstallmentState, len(schedule.Installments))
	for i, inst := range schedule.Installments {
		states[i] = InstallmentState{
			Installment: inst,
			Applied:     decimal.Zero,
			Remaining:   inst.Amount,
			Status:      StatusUnpaid,
		}
	}

	result := &Result{
		Installments: states,
		TotalPaid:    decimal.Zero,
	}

	current := 0
	for _, payment := range history {
		result.TotalPaid = result.TotalPaid.Add(payment.Amount)
		funds := payment.Amount

		for funds.IsPositive() && current < len(states) {
			state := &states[current]
			applied := decimal.Min(funds, state.Remaining)

			if applied.IsPositive() {
				state.Applied = state.Applied.Add(applied)
				state.Remaining = state.Remaining.Sub(applied)
				funds = funds.Sub(applied)
				result.Allocations = append(result.Allocations, Allocation{
					PaymentID: payment.ID,
					Sequence:  state.Sequence,
					Amount:    applied,
				})
			}

			if state.Remaining.LessThanOrEqual(r.epsilon) {
				paidAt := payment.PaidAt
				state.Status = StatusSatisfied
				state.SatisfiedAt = &paidAt
				current++
				continue
			}
			state.Status = StatusPartial
		}

		if funds.IsPositive() {
			result.Overpayments = append(result.Overpayments, Overpayment{
				PaymentID: payment.ID,
				Amount:    payment.Amount,
				Excess:    funds,
			})
		}
	}

	// An installment within epsilon of nothing is satisfied even without payments
	for current < len(states) && states[current].Remaining.LessThanOrEqual(r.epsilon) {
		states[current].Status = StatusSatisfied
		current++
	}

	result.IsFullyPaid = current == len(states)
	if !result.IsFullyPaid {
		result.NextDue = &states[current]
	}
	result.OutstandingBalance = outstandingBalance(schedule, states)

	if len(result.Overpayments) > 0 {
		return result, &OverpaymentError{Overpayments: result.Overpayments}
	}
	return result, nil
}

func validateHistory(payments []PaymentEvent) error {
	seen := make(map[string]struct{}, len(payments))
	var loanID uint
	for _, p := range payments {
		if err := ValidatePayment(p); err != nil {
			return err
		}
		if loanID == 0 {
			loanID = p.LoanID
		} else if p.LoanID != loanID {
			return &InvalidPaymentError{PaymentID: p.ID, Reason: "references a different loan"}
		}
		if _, dup := seen[p.ID]; dup {
			return &InvalidPaymentError{PaymentID: p.ID, Reason: "duplicate payment id"}
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// outstandingBalance is the principal not yet repaid. Partially paid
// installments contribute their principal share pro rata.
func outstandingBalance(schedule *amortization.Schedule, states []InstallmentState) decimal.Decimal {
	balance := schedule.Principal()
	for _, state := range states {
		switch state.Status {
		case StatusSatisfied:
			balance = balance.Sub(state.Principal)
		case StatusPartial:
			if state.Amount.IsPositive() {
				share := state.Applied.Mul(state.Principal).Div(state.Amount)
				balance = balance.Sub(amortization.RoundCents(share))
			}
		}
	}
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// Overdue returns unsatisfied installments due before asOf
func (res *Result) Overdue(asOf time.Time) []InstallmentState {
	var overdue []InstallmentState
	for _, state := range res.Installments {
		if state.Status != StatusSatisfied && state.DueDate.Before(asOf) {
			overdue = append(overdue, state)
		}
	}
	return overdue
}

// AmountInArrears sums what remains unpaid on overdue installments
func (res *Result) AmountInArrears(asOf time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, state := range res.Overdue(asOf) {
		total = total.Add(state.Remaining)
	}
	return total
}

// SatisfiedCount returns the number of satisfied installments
func (res *Result) SatisfiedCount() int {
	count := 0
	for _, state := range res.Installments {
		if state.Status == StatusSatisfied {
			count++
		}
	}
	return count
}

// FirstAllocation returns the installment a payment was first applied to
func (res *Result) FirstAllocation(paymentID string) (int, bool) {
	for _, alloc := range res.Allocations {
		if alloc.PaymentID == paymentID {
			return alloc.Sequence, true
		}
	}
	return 0, false
}
