package core

import (
	"errors"
	"fmt"
	"strings"
)

// Frequency says how often a recurring item fires.
type Frequency string

const (
	Monthly  Frequency = "monthly"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
)

// Method selects the debt payoff strategy.
type Method string

const (
	// Snowball pays debts in ascending balance order, smallest first.
	Snowball Method = "snowball"
	// Avalanche pays debts in descending APR order, costliest first.
	Avalanche Method = "avalanche"
)

// ChangeType tags a daily balance change as money in or money out.
type ChangeType string

const (
	ChangeIncome ChangeType = "income"
	ChangeBill   ChangeType = "bill"
)

var (
	ErrInvalidDate       = errors.New("invalid date: expected MM-DD-YYYY")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyRange        = errors.New("start date is after end date")
	ErrUnsupportedMethod = errors.New("unsupported payoff method")
	ErrNonConvergent     = errors.New("payoff does not converge: minimum payments cannot outpace interest")
)

// RecurringItem is a paycheck or bill that fires on a recurrence rule.
// Immutable for the duration of a forecast run.
type RecurringItem struct {
	Name      string    `json:"name"`
	Amount    Money     `json:"amount"`
	StartDate Date      `json:"start_date"`
	Frequency Frequency `json:"frequency"`
}

// Validate checks name and amount. An unrecognized frequency is not an
// error: it simply never fires.
func (it RecurringItem) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return ErrEmptyName
	}
	if !it.Amount.IsPositive() {
		return fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, it.Name)
	}
	if it.StartDate.IsZero() {
		return fmt.Errorf("%w: %q has no start date", ErrInvalidDate, it.Name)
	}
	return nil
}

// ForecastRequest describes one cash-flow simulation.
type ForecastRequest struct {
	StartingBalance Money           `json:"starting_balance"`
	StartDate       Date            `json:"start_date"`
	EndDate         Date            `json:"end_date"`
	Paychecks       []RecurringItem `json:"paychecks"`
	Bills           []RecurringItem `json:"bills"`
}

func (r ForecastRequest) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ErrInvalidDate
	}
	if r.EndDate.Time.Before(r.StartDate.Time) {
		return ErrEmptyRange
	}
	for _, it := range r.Paychecks {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("paycheck: %w", err)
		}
	}
	for _, it := range r.Bills {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("bill: %w", err)
		}
	}
	return nil
}

// Change is one applied income or bill on a given day.
type Change struct {
	Name   string     `json:"name"`
	Type   ChangeType `json:"type"`
	Amount Money      `json:"amount"`
}

// DailySnapshot is the balance after one simulated day. Immutable once
// appended to a forecast.
type DailySnapshot struct {
	Date        Date     `json:"date"`
	Balance     Money    `json:"balance"`
	DailyChange Money    `json:"daily_change"`
	Changes     []Change `json:"changes"`
}

// ForecastSummary aggregates a finished forecast.
type ForecastSummary struct {
	FinalBalance      Money `json:"final_balance"`
	LowestBalance     Money `json:"lowest_balance"`
	FirstNegativeDate *Date `json:"first_negative_date"`
}

// ForecastResult is the full output of a cash-flow simulation.
type ForecastResult struct {
	Forecast []DailySnapshot `json:"forecast"`
	Summary  ForecastSummary `json:"summary"`
}

// Debt is one liability inside a payoff run. CurrentBalance mutates as
// payments and interest apply; only the day-of-month of DueDate matters.
type Debt struct {
	Name           string  `json:"name"`
	DueDate        Date    `json:"due_date"`
	CurrentBalance Money   `json:"current_balance"`
	APR            float64 `json:"apr"`
	MinimumPayment Money   `json:"minimum_payment"`
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.DueDate.IsZero() {
		return fmt.Errorf("%w: %q has no due date", ErrInvalidDate, d.Name)
	}
	if !d.CurrentBalance.IsPositive() {
		return fmt.Errorf("%w: %q balance must be positive", ErrInvalidAmount, d.Name)
	}
	if d.APR < 0 {
		return fmt.Errorf("%w: %q apr must not be negative", ErrInvalidAmount, d.Name)
	}
	if !d.MinimumPayment.IsPositive() {
		return fmt.Errorf("%w: %q minimum payment must be positive", ErrInvalidAmount, d.Name)
	}
	return nil
}

// PayoffRequest describes one debt payoff simulation.
type PayoffRequest struct {
	StartDate    Date   `json:"start_date"`
	Method       Method `json:"method"`
	ExtraPayment Money  `json:"extra_payment"`
	Debt         []Debt `json:"debt"`
}

func (r PayoffRequest) Validate() error {
	if r.StartDate.IsZero() {
		return ErrInvalidDate
	}
	switch r.Method {
	case Snowball, Avalanche:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, r.Method)
	}
	if r.ExtraPayment.IsNegative() {
		return fmt.Errorf("%w: extra payment must not be negative", ErrInvalidAmount)
	}
	for _, d := range r.Debt {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DebtBalance is one debt's remaining balance inside a month-end snapshot.
type DebtBalance struct {
	Name           string `json:"name"`
	CurrentBalance Money  `json:"current_balance"`
}

// MonthEndSnapshot records the state of a payoff run on the last calendar
// day of a month.
type MonthEndSnapshot struct {
	Date         Date          `json:"date"`
	TotalDebt    Money         `json:"total_debt"`
	ExtraPayment Money         `json:"extra_payment"`
	Debt         []DebtBalance `json:"debt"`
}

// TimeToPayoff is the calendar-accurate elapsed time of a payoff run.
type TimeToPayoff struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// PayoffResult is the full output of a debt payoff simulation.
type PayoffResult struct {
	Schedule     []MonthEndSnapshot `json:"schedule"`
	TimeToPayoff TimeToPayoff       `json:"time_to_payoff"`
}
