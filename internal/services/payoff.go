package services

import (
	"sort"

	"fincast/internal/core"
)

// maxPayoffDays caps the payoff loop at 100 simulated years. A debt set
// whose minimum payments cannot outpace interest would otherwise step
// forever.
const maxPayoffDays = 36600

// IsDue reports whether a debt's payment is due on the given date: the
// day of the month matches the due date's day. There is deliberately no
// lower bound, so a due date anchored in a future month still collects a
// payment in the start month.
func IsDue(date core.Date, debt core.Debt) bool {
	return date.Day() == debt.DueDate.Day()
}

// orderDebts returns a copy of the debts sorted by the chosen strategy:
// snowball ascending by balance, avalanche descending by APR. The sort is
// stable so equal debts keep their input order.
func orderDebts(debts []core.Debt, method core.Method) ([]core.Debt, error) {
	ordered := make([]core.Debt, len(debts))
	copy(ordered, debts)
	switch method {
	case core.Snowball:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].CurrentBalance.LessThan(ordered[j].CurrentBalance)
		})
	case core.Avalanche:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].APR > ordered[j].APR
		})
	default:
		return nil, core.ErrUnsupportedMethod
	}
	return ordered, nil
}

// payoffTotals tracks money movement across a whole run, used to check
// conservation: paid + remaining = principal + interest.
type payoffTotals struct {
	paid     core.Money
	interest core.Money
}

// RunPayoff simulates debt repayment a calendar day at a time until every
// debt is retired.
//
// The debts are ordered by strategy exactly once before the loop and never
// re-sorted, even after removals; the debt at position 0 is the target
// that receives the pooled extra payment. During the calendar month
// containing the start date no interest accrues (the setup period); the
// flag flips permanently on the first month transition. When a payment
// covers a debt's whole balance the debt retires: it is removed after the
// day's pass and its minimum payment folds into the extra pool for good.
func RunPayoff(req core.PayoffRequest) (*core.PayoffResult, error) {
	result, _, err := runPayoff(req)
	return result, err
}

func runPayoff(req core.PayoffRequest) (*core.PayoffResult, payoffTotals, error) {
	var totals payoffTotals

	if err := req.Validate(); err != nil {
		return nil, totals, err
	}
	debts, err := orderDebts(req.Debt, req.Method)
	if err != nil {
		return nil, totals, err
	}

	extra := req.ExtraPayment
	current := req.StartDate
	inStartMonth := true
	var schedule []core.MonthEndSnapshot

	for steps := 0; len(debts) > 0; steps++ {
		if steps >= maxPayoffDays {
			return nil, totals, core.ErrNonConvergent
		}
		if !current.SameMonth(req.StartDate) {
			inStartMonth = false
		}

		// One pass over a snapshot of positions; removals apply after the
		// pass so no debt is skipped or visited twice.
		retired := make([]bool, len(debts))
		for i := range debts {
			debt := &debts[i]
			if !IsDue(current, *debt) {
				continue
			}
			if !inStartMonth {
				interest := core.MonthlyInterest(debt.CurrentBalance, debt.APR)
				debt.CurrentBalance = debt.CurrentBalance.Add(interest)
				totals.interest = totals.interest.Add(interest)
			}
			payment := debt.MinimumPayment
			if i == 0 {
				// The target debt takes the pooled extra payment.
				payment = payment.Add(extra)
			}
			if debt.CurrentBalance.AtMost(payment) {
				totals.paid = totals.paid.Add(debt.CurrentBalance)
				retired[i] = true
				extra = extra.Add(debt.MinimumPayment)
			} else {
				debt.CurrentBalance = debt.CurrentBalance.Sub(payment)
				totals.paid = totals.paid.Add(payment)
			}
		}
		debts = compact(debts, retired)

		if current.IsLastDayOfMonth() {
			schedule = append(schedule, monthEnd(current, debts, extra))
		}
		current = current.AddDays(1)
	}

	years, months, days := core.CalendarDiff(req.StartDate, current)
	return &core.PayoffResult{
		Schedule: schedule,
		TimeToPayoff: core.TimeToPayoff{
			Years:  years,
			Months: months,
			Days:   days,
		},
	}, totals, nil
}

// compact removes the debts marked retired, preserving order.
func compact(debts []core.Debt, retired []bool) []core.Debt {
	kept := debts[:0]
	for i, debt := range debts {
		if !retired[i] {
			kept = append(kept, debt)
		}
	}
	return kept
}

// monthEnd captures every remaining debt's balance, the summed total, and
// the current extra-payment pool.
func monthEnd(date core.Date, debts []core.Debt, extra core.Money) core.MonthEndSnapshot {
	snapshot := core.MonthEndSnapshot{
		Date:         date,
		ExtraPayment: extra,
		Debt:         make([]core.DebtBalance, 0, len(debts)),
	}
	for _, debt := range debts {
		snapshot.TotalDebt = snapshot.TotalDebt.Add(debt.CurrentBalance)
		snapshot.Debt = append(snapshot.Debt, core.DebtBalance{
			Name:           debt.Name,
			CurrentBalance: debt.CurrentBalance,
		})
	}
	return snapshot
}
