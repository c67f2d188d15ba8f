// Package amortization turns loan terms into a fixed-installment repayment
// schedule. Everything here is pure: no I/O, no clocks, no shared state.
package amortization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxTenureMonths bounds schedule length (50 years)
const MaxTenureMonths = 600

// powPrecision bounds the fractional digits carried by intermediate values
const powPrecision = 30

// Annual rates are stored as NUMERIC(9,6)
const rateScale = 6

// MaxAnnualRate is the exclusive upper bound on AnnualRate (100000% p.a.)
var MaxAnnualRate = decimal.NewFromInt(1000)

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	oneCent = decimal.New(1, -2)
)

// LoanTerms are fixed at origination
type LoanTerms struct {
	Principal    decimal.Decimal `json:"principal"`
	AnnualRate   decimal.Decimal `json:"annual_rate"` // 0.12 = 12% p.a.
	TenureMonths int             `json:"tenure_months"`
	StartDate    time.Time       `json:"start_date"`
}

// Validate checks the invariants GenerateSchedule relies on
func (t LoanTerms) Validate() error {
	principal := RoundCents(t.Principal)
	switch {
	case !principal.IsPositive():
		return invalidTerms("principal", "must be greater than zero")
	case t.TenureMonths < 1:
		return invalidTerms("tenure_months", "must be at least 1")
	case t.TenureMonths > MaxTenureMonths:
		return invalidTerms("tenure_months", fmt.Sprintf("must not exceed %d", MaxTenureMonths))
	case t.AnnualRate.IsNegative():
		return invalidTerms("annual_rate", "must not be negative")
	case !t.AnnualRate.LessThan(MaxAnnualRate):
		return invalidTerms("annual_rate", "must be less than "+MaxAnnualRate.String())
	case !t.AnnualRate.Equal(t.AnnualRate.Truncate(rateScale)):
		return invalidTerms("annual_rate", fmt.Sprintf("must not have more than %d decimal places", rateScale))
	case t.StartDate.IsZero():
		return invalidTerms("start_date", "is required")
	case principal.LessThan(oneCent.Mul(decimal.NewFromInt(int64(t.TenureMonths)))):
		return invalidTerms("principal", "must cover at least one cent per installment")
	}

	// Principal components grow every period, so the first is the smallest.
	// Below a cent the displayed balance would stall.
	rate := t.PeriodicRate()
	if !rate.IsZero() {
		firstPrincipal := installmentAmount(principal, rate, t.TenureMonths).Sub(principal.Mul(rate))
		if firstPrincipal.LessThan(oneCent) {
			return invalidTerms("annual_rate", "is too high for the tenure: installments would not reduce the principal")
		}
	}
	return nil
}

// PeriodicRate is the monthly rate applied to the remaining principal
func (t LoanTerms) PeriodicRate() decimal.Decimal {
	return t.AnnualRate.DivRound(twelve, powPrecision)
}

// Equal reports whether both terms produce the same schedule
func (t LoanTerms) Equal(other LoanTerms) bool {
	return t.Fingerprint() == other.Fingerprint()
}

// Fingerprint is a stable digest of the normalized terms. Storage layers
// keep it next to cached installments to detect schedules computed from
// since-edited terms.
func (t LoanTerms) Fingerprint() string {
	n := t.normalized()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s",
		n.Principal.StringFixed(2),
		n.AnnualRate.String(),
		n.TenureMonths,
		n.StartDate.Format("2006-01-02"),
	)))
	return hex.EncodeToString(sum[:])
}

func (t LoanTerms) normalized() LoanTerms {
	return LoanTerms{
		Principal:    RoundCents(t.Principal),
		AnnualRate:   t.AnnualRate,
		TenureMonths: t.TenureMonths,
		StartDate:    TruncateDate(t.StartDate),
	}
}

// Installment is one scheduled period
type Installment struct {
	Sequence     int             `json:"sequence"`
	DueDate      time.Time       `json:"due_date"`
	Amount       decimal.Decimal `json:"installment_amount"`
	Interest     decimal.Decimal `json:"interest_component"`
	Principal    decimal.Decimal `json:"principal_component"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// Schedule is the canonical installment sequence for a set of terms
type Schedule struct {
	Terms        LoanTerms     `json:"terms"`
	Installments []Installment `json:"installments"`
}

// GenerateSchedule computes the amortization schedule for terms.
// All monetary fields are rounded half-up to cents. The final installment
// absorbs any cent drift, so principal components sum exactly to the
// principal and the final balance is zero.
func GenerateSchedule(terms LoanTerms) (*Schedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	terms = terms.normalized()

	principal := terms.Principal
	rate := terms.PeriodicRate()
	n := terms.TenureMonths

	exactEMI := installmentAmount(principal, rate, n)
	emi := RoundCents(exactEMI)
	if rate.IsZero() && n > 1 && !emi.Mul(decimal.NewFromInt(int64(n-1))).LessThan(principal) {
		// Rounding up would exhaust the principal before the last period
		emi = exactEMI.Truncate(2)
	}

	// discount[m] is (1+r)^-m; the exact balance with m payments left is
	// their present value
	discount := discountFactors(rate, n)

	installments := make([]Installment, 0, n)
	allocated := decimal.Zero

	for seq := 1; seq <= n; seq++ {
		remaining := decimal.Zero
		if !rate.IsZero() {
			remaining = exactEMI.Mul(one.Sub(discount[n-seq])).DivRound(rate, powPrecision)
		}

		// balance is the displayed principal still owed before this period
		balance := principal.Sub(allocated)

		var amount, interest, principalPart decimal.Decimal
		switch {
		case seq == n:
			// Final period takes whatever principal is left
			principalPart = balance
			amount, interest = principalPart, decimal.Zero
			if !rate.IsZero() {
				amount, interest = emi, emi.Sub(principalPart)
				if interest.IsNegative() {
					amount, interest = principalPart, decimal.Zero
				}
			}
		case rate.IsZero():
			principalPart = decimal.Min(emi, balance)
			amount, interest = principalPart, decimal.Zero
		default:
			// The displayed balance tracks the exact balance rounded to cents,
			// so per-period rounding never accumulates.
			amount = emi
			principalPart = balance.Sub(RoundCents(remaining))
			interest = amount.Sub(principalPart)
			if interest.IsNegative() {
				principalPart, interest = amount, decimal.Zero
			}
		}

		allocated = allocated.Add(principalPart)
		installments = append(installments, Installment{
			Sequence:     seq,
			DueDate:      AddMonths(terms.StartDate, seq-1),
			Amount:       amount,
			Interest:     interest,
			Principal:    principalPart,
			BalanceAfter: principal.Sub(allocated),
		})
	}

	return &Schedule{Terms: terms, Installments: installments}, nil
}

// installmentAmount is the unrounded annuity payment P·r / (1 - (1+r)^-n)
func installmentAmount(principal, rate decimal.Decimal, n int) decimal.Decimal {
	if rate.IsZero() {
		return principal.DivRound(decimal.NewFromInt(int64(n)), powPrecision)
	}
	discount := discountFactors(rate, n)
	return principal.Mul(rate).DivRound(one.Sub(discount[n]), powPrecision)
}

// discountFactors returns (1+r)^-m for m = 0..n, truncated to powPrecision
// places at each step
func discountFactors(rate decimal.Decimal, n int) []decimal.Decimal {
	factors := make([]decimal.Decimal, n+1)
	factors[0] = one
	if rate.IsZero() {
		for m := 1; m <= n; m++ {
			factors[m] = one
		}
		return factors
	}
	v := one.DivRound(one.Add(rate), powPrecision)
	for m := 1; m <= n; m++ {
		factors[m] = factors[m-1].Mul(v).Truncate(powPrecision)
	}
	return factors
}

// RoundCents rounds half-up to two decimal places
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Len returns the number of installments
func (s *Schedule) Len() int {
	return len(s.Installments)
}

// Principal returns the sum of all principal components
func (s *Schedule) Principal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Installments {
		total = total.Add(inst.Principal)
	}
	return total
}

// InstallmentAmount returns the regular (first period) installment amount
func (s *Schedule) InstallmentAmount() decimal.Decimal {
	if len(s.Installments) == 0 {
		return decimal.Zero
	}
	return s.Installments[0].Amount
}

// TotalInterest returns the interest paid over the life of the loan
func (s *Schedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Installments {
		total = total.Add(inst.Interest)
	}
	return total
}

// TotalPayable returns principal plus interest
func (s *Schedule) TotalPayable() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Installments {
		total = total.Add(inst.Amount)
	}
	return total
}

// Installment returns the installment with the given 1-based sequence number
func (s *Schedule) Installment(seq int) (Installment, bool) {
	if seq < 1 || seq > len(s.Installments) {
		return Installment{}, false
	}
	return s.Installments[seq-1], true
}

// MaturityDate is the due date of the final installment
func (s *Schedule) MaturityDate() time.Time {
	if len(s.Installments) == 0 {
		return s.Terms.StartDate
	}
	return s.Installments[len(s.Installments)-1].DueDate
}
