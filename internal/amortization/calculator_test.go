package amortization

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGenerateSchedule_ReferenceLoan(t *testing.T) {
	schedule, err := GenerateSchedule(LoanTerms{
		Principal:    dec("120000"),
		AnnualRate:   dec("0.12"),
		TenureMonths: 12,
		StartDate:    date(2024, time.January, 1),
	})
	require.NoError(t, err)
	require.Equal(t, 12, schedule.Len())

	for _, inst := range schedule.Installments {
		assert.Equal(t, "10661.85", inst.Amount.StringFixed(2), "installment %d", inst.Sequence)
	}

	first := schedule.Installments[0]
	assert.Equal(t, "1200.00", first.Interest.StringFixed(2))
	assert.Equal(t, "9461.85", first.Principal.StringFixed(2))
	assert.Equal(t, "110538.15", first.BalanceAfter.StringFixed(2))

	last := schedule.Installments[11]
	assert.Equal(t, "105.56", last.Interest.StringFixed(2))
	assert.Equal(t, "10556.29", last.Principal.StringFixed(2))
	assert.Equal(t, "0.00", last.BalanceAfter.StringFixed(2))
	assert.Equal(t, date(2024, time.December, 1), last.DueDate)

	assert.True(t, schedule.Principal().Equal(dec("120000")))
	assert.Equal(t, "10661.85", schedule.InstallmentAmount().StringFixed(2))
	assert.Equal(t, "7942.20", schedule.TotalInterest().StringFixed(2))
}

func TestGenerateSchedule_Properties(t *testing.T) {
	principals := []string{"1000", "1234.56", "50000", "120000", "350000", "999999.99"}
	rates := []string{"0", "0.01", "0.05", "0.12", "0.1999"}
	tenures := []int{1, 2, 3, 7, 12, 24, 60, 120}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range tenures {
				terms := LoanTerms{
					Principal:    dec(p),
					AnnualRate:   dec(r),
					TenureMonths: n,
					StartDate:    date(2024, time.March, 15),
				}
				schedule, err := GenerateSchedule(terms)
				require.NoError(t, err, "%s/%s/%d", p, r, n)
				require.Len(t, schedule.Installments, n)

				assert.True(t, schedule.Principal().Equal(dec(p)),
					"%s/%s/%d: principal sum %s", p, r, n, schedule.Principal())

				previous := dec(p)
				for i, inst := range schedule.Installments {
					assert.Equal(t, i+1, inst.Sequence)
					assert.True(t, inst.Interest.Add(inst.Principal).Equal(inst.Amount),
						"%s/%s/%d #%d: components do not add up", p, r, n, inst.Sequence)
					assert.False(t, inst.Interest.IsNegative())
					assert.True(t, inst.BalanceAfter.LessThan(previous),
						"%s/%s/%d #%d: balance not decreasing", p, r, n, inst.Sequence)
					previous = inst.BalanceAfter

					if !dec(r).IsZero() {
						assert.True(t, inst.Amount.Sub(schedule.InstallmentAmount()).Abs().LessThanOrEqual(dec("0.01")),
							"%s/%s/%d #%d: amount %s drifted", p, r, n, inst.Sequence, inst.Amount)
					} else {
						assert.True(t, inst.Interest.IsZero())
					}
				}
				assert.True(t, previous.IsZero(), "%s/%s/%d: final balance %s", p, r, n, previous)
			}
		}
	}
}

// referenceEMI computes P·r·(1+r)^n / ((1+r)^n - 1) with an untruncated power
func referenceEMI(principal, annualRate decimal.Decimal, n int) decimal.Decimal {
	rate := annualRate.DivRound(decimal.NewFromInt(12), 40)
	base := decimal.NewFromInt(1).Add(rate)
	factor := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		factor = factor.Mul(base)
	}
	return principal.Mul(rate).Mul(factor).DivRound(factor.Sub(decimal.NewFromInt(1)), 40)
}

func TestGenerateSchedule_InstallmentRoundsHalfUp(t *testing.T) {
	schedule, err := GenerateSchedule(LoanTerms{
		Principal:    dec("120000"),
		AnnualRate:   dec("0.12"),
		TenureMonths: 24,
		StartDate:    date(2024, time.January, 1),
	})
	require.NoError(t, err)
	// Exact payment is 5648.8166...
	assert.Equal(t, "5648.82", schedule.InstallmentAmount().StringFixed(2))

	principals := []string{"1000", "25000.5", "120000", "999999.99"}
	rates := []string{"0.0001", "0.035", "0.12", "0.1999", "0.24"}
	tenures := []int{2, 13, 36, 120, 240, 360}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range tenures {
				schedule, err := GenerateSchedule(LoanTerms{
					Principal:    dec(p),
					AnnualRate:   dec(r),
					TenureMonths: n,
					StartDate:    date(2024, time.January, 1),
				})
				require.NoError(t, err, "%s/%s/%d", p, r, n)

				expected := RoundCents(referenceEMI(dec(p), dec(r), n))
				assert.Equal(t, expected.StringFixed(2), schedule.InstallmentAmount().StringFixed(2), "%s/%s/%d", p, r, n)
			}
		}
	}
}

func TestGenerateSchedule_HighRates(t *testing.T) {
	principals := []string{"0.88", "22311.97", "500000"}
	rates := []string{"1.5", "3", "10", "120", "999.999999"}
	tenures := []int{1, 2, 12, 36, 88, 600}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range tenures {
				terms := LoanTerms{
					Principal:    dec(p),
					AnnualRate:   dec(r),
					TenureMonths: n,
					StartDate:    date(2024, time.January, 1),
				}
				schedule, err := GenerateSchedule(terms)
				if err != nil {
					var termsErr *InvalidLoanTermsError
					require.True(t, errors.As(err, &termsErr), "%s/%s/%d: %v", p, r, n, err)
					assert.Contains(t, []string{"principal", "annual_rate"}, termsErr.Field)
					continue
				}

				assert.True(t, schedule.Principal().Equal(dec(p)), "%s/%s/%d: principal sum %s", p, r, n, schedule.Principal())
				previous := dec(p)
				for _, inst := range schedule.Installments {
					assert.True(t, inst.Principal.IsPositive(), "%s/%s/%d #%d: principal %s", p, r, n, inst.Sequence, inst.Principal)
					assert.False(t, inst.Interest.IsNegative(), "%s/%s/%d #%d: interest %s", p, r, n, inst.Sequence, inst.Interest)
					assert.True(t, inst.BalanceAfter.LessThan(previous), "%s/%s/%d #%d: balance not decreasing", p, r, n, inst.Sequence)
					assert.True(t, inst.Amount.Sub(schedule.InstallmentAmount()).Abs().LessThanOrEqual(dec("0.01")),
						"%s/%s/%d #%d: amount %s drifted", p, r, n, inst.Sequence, inst.Amount)
					previous = inst.BalanceAfter
				}
				assert.True(t, previous.IsZero(), "%s/%s/%d: final balance %s", p, r, n, previous)
			}
		}
	}

	// Twelve periods at 1000% still repay principal every month
	_, err := GenerateSchedule(LoanTerms{
		Principal: dec("1000"), AnnualRate: dec("10"), TenureMonths: 12, StartDate: date(2024, time.January, 1),
	})
	assert.NoError(t, err)
}

func TestLoanTerms_ValidateRateScale(t *testing.T) {
	terms := LoanTerms{
		Principal:    dec("1000"),
		AnnualRate:   dec("0.123456"),
		TenureMonths: 12,
		StartDate:    date(2024, time.January, 1),
	}
	assert.NoError(t, terms.Validate())

	// Trailing zeros beyond six places are not extra precision
	terms.AnnualRate = dec("0.12345600")
	assert.NoError(t, terms.Validate())

	terms.AnnualRate = dec("0.1234561")
	assert.ErrorIs(t, terms.Validate(), ErrInvalidLoanTerms)
}

func TestGenerateSchedule_SingleInstallment(t *testing.T) {
	schedule, err := GenerateSchedule(LoanTerms{
		Principal:    dec("1000"),
		AnnualRate:   dec("0.12"),
		TenureMonths: 1,
		StartDate:    date(2024, time.January, 10),
	})
	require.NoError(t, err)
	require.Len(t, schedule.Installments, 1)

	inst := schedule.Installments[0]
	assert.Equal(t, "1000.00", inst.Principal.StringFixed(2))
	assert.Equal(t, "10.00", inst.Interest.StringFixed(2))
	assert.Equal(t, "1010.00", inst.Amount.StringFixed(2))
	assert.True(t, inst.BalanceAfter.IsZero())
	assert.Equal(t, date(2024, time.January, 10), inst.DueDate)
}

func TestGenerateSchedule_ZeroRate(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		tenure    int
		amounts   []string
	}{
		{name: "even split", principal: "3000", tenure: 3, amounts: []string{"1000.00", "1000.00", "1000.00"}},
		{name: "final absorbs cent", principal: "100", tenure: 3, amounts: []string{"33.33", "33.33", "33.34"}},
		{name: "rounding down", principal: "200", tenure: 3, amounts: []string{"66.67", "66.67", "66.66"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := GenerateSchedule(LoanTerms{
				Principal:    dec(tt.principal),
				AnnualRate:   decimal.Zero,
				TenureMonths: tt.tenure,
				StartDate:    date(2024, time.January, 1),
			})
			require.NoError(t, err)

			var got []string
			for _, inst := range schedule.Installments {
				got = append(got, inst.Amount.StringFixed(2))
				assert.True(t, inst.Interest.IsZero())
				assert.True(t, inst.Principal.Equal(inst.Amount))
			}
			assert.Equal(t, tt.amounts, got)
			assert.True(t, schedule.Principal().Equal(dec(tt.principal)))
		})
	}
}

func TestGenerateSchedule_Idempotent(t *testing.T) {
	terms := LoanTerms{
		Principal:    dec("87500.50"),
		AnnualRate:   dec("0.0875"),
		TenureMonths: 48,
		StartDate:    date(2023, time.August, 31),
	}

	a, err := GenerateSchedule(terms)
	require.NoError(t, err)
	b, err := GenerateSchedule(terms)
	require.NoError(t, err)

	require.Equal(t, len(a.Installments), len(b.Installments))
	for i := range a.Installments {
		x, y := a.Installments[i], b.Installments[i]
		assert.Equal(t, x.DueDate, y.DueDate)
		assert.Equal(t, x.Amount.String(), y.Amount.String())
		assert.Equal(t, x.Interest.String(), y.Interest.String())
		assert.Equal(t, x.Principal.String(), y.Principal.String())
		assert.Equal(t, x.BalanceAfter.String(), y.BalanceAfter.String())
	}
	assert.Equal(t, terms.Fingerprint(), a.Terms.Fingerprint())
}

func TestGenerateSchedule_MonthEndDueDates(t *testing.T) {
	schedule, err := GenerateSchedule(LoanTerms{
		Principal:    dec("4000"),
		AnnualRate:   dec("0.06"),
		TenureMonths: 4,
		StartDate:    date(2024, time.January, 31),
	})
	require.NoError(t, err)

	want := []time.Time{
		date(2024, time.January, 31),
		date(2024, time.February, 29),
		date(2024, time.March, 31),
		date(2024, time.April, 30),
	}
	for i, inst := range schedule.Installments {
		assert.Equal(t, want[i], inst.DueDate)
	}
}

func TestGenerateSchedule_RejectsInvalidTerms(t *testing.T) {
	valid := LoanTerms{
		Principal:    dec("1000"),
		AnnualRate:   dec("0.1"),
		TenureMonths: 12,
		StartDate:    date(2024, time.January, 1),
	}

	tests := []struct {
		name   string
		mutate func(*LoanTerms)
		field  string
	}{
		{"zero principal", func(lt *LoanTerms) { lt.Principal = decimal.Zero }, "principal"},
		{"negative principal", func(lt *LoanTerms) { lt.Principal = dec("-5") }, "principal"},
		{"sub-cent principal", func(lt *LoanTerms) { lt.Principal = dec("0.004") }, "principal"},
		{"zero tenure", func(lt *LoanTerms) { lt.TenureMonths = 0 }, "tenure_months"},
		{"negative tenure", func(lt *LoanTerms) { lt.TenureMonths = -3 }, "tenure_months"},
		{"tenure too long", func(lt *LoanTerms) { lt.TenureMonths = MaxTenureMonths + 1 }, "tenure_months"},
		{"negative rate", func(lt *LoanTerms) { lt.AnnualRate = dec("-0.01") }, "annual_rate"},
		{"missing start date", func(lt *LoanTerms) { lt.StartDate = time.Time{} }, "start_date"},
		{"principal below one cent per period", func(lt *LoanTerms) { lt.Principal = dec("0.11") }, "principal"},
		{"rate with seven decimals", func(lt *LoanTerms) { lt.AnnualRate = dec("0.1234567") }, "annual_rate"},
		{"rate at the cap", func(lt *LoanTerms) { lt.AnnualRate = MaxAnnualRate }, "annual_rate"},
		{"rate stalls the balance", func(lt *LoanTerms) {
			lt.Principal, lt.AnnualRate, lt.TenureMonths = dec("22311.97"), dec("10"), 88
		}, "annual_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := valid
			tt.mutate(&terms)

			schedule, err := GenerateSchedule(terms)
			assert.Nil(t, schedule)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLoanTerms))

			var termsErr *InvalidLoanTermsError
			require.True(t, errors.As(err, &termsErr))
			assert.Equal(t, tt.field, termsErr.Field)
		})
	}
}

func TestLoanTerms_Fingerprint(t *testing.T) {
	base := LoanTerms{
		Principal:    dec("1000"),
		AnnualRate:   dec("0.12"),
		TenureMonths: 12,
		StartDate:    time.Date(2024, time.January, 1, 15, 30, 0, 0, time.UTC),
	}

	same := base
	same.Principal = dec("1000.00")
	same.AnnualRate = dec("0.120")
	same.StartDate = date(2024, time.January, 1)
	assert.True(t, base.Equal(same))

	edited := base
	edited.TenureMonths = 13
	assert.False(t, base.Equal(edited))
	assert.NotEqual(t, base.Fingerprint(), edited.Fingerprint())
}

func TestSchedule_Lookup(t *testing.T) {
	schedule, err := GenerateSchedule(LoanTerms{
		Principal:    dec("600"),
		AnnualRate:   decimal.Zero,
		TenureMonths: 6,
		StartDate:    date(2024, time.May, 5),
	})
	require.NoError(t, err)

	inst, ok := schedule.Installment(3)
	require.True(t, ok)
	assert.Equal(t, 3, inst.Sequence)
	assert.Equal(t, date(2024, time.July, 5), inst.DueDate)

	_, ok = schedule.Installment(0)
	assert.False(t, ok)
	_, ok = schedule.Installment(7)
	assert.False(t, ok)

	assert.Equal(t, date(2024, time.October, 5), schedule.MaturityDate())
	assert.Equal(t, "600.00", schedule.TotalPayable().StringFixed(2))
}
