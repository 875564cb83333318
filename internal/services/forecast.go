package services

import (
	"fincast/internal/core"
)

// RunForecast steps a calendar day at a time from the request's start date
// to its end date inclusive, applying every matching paycheck and bill to
// a running balance and recording one snapshot per day.
//
// The computation is pure: it reads nothing but the request and mutates
// nothing outside its return value.
func RunForecast(req core.ForecastRequest) (*core.ForecastResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	balance := req.StartingBalance
	days := req.EndDate.DaysSince(req.StartDate) + 1
	forecast := make([]core.DailySnapshot, 0, days)

	for date := req.StartDate; !date.Time.After(req.EndDate.Time); date = date.AddDays(1) {
		var changes []core.Change
		var dailyChange core.Money

		// Paychecks first, then bills, preserving input order.
		for _, income := range req.Paychecks {
			if !Matches(date, income) {
				continue
			}
			balance = balance.Add(income.Amount)
			dailyChange = dailyChange.Add(income.Amount)
			changes = append(changes, core.Change{
				Name:   income.Name,
				Type:   core.ChangeIncome,
				Amount: income.Amount,
			})
		}
		for _, bill := range req.Bills {
			if !Matches(date, bill) {
				continue
			}
			balance = balance.Sub(bill.Amount)
			dailyChange = dailyChange.Sub(bill.Amount)
			changes = append(changes, core.Change{
				Name:   bill.Name,
				Type:   core.ChangeBill,
				Amount: bill.Amount,
			})
		}

		forecast = append(forecast, core.DailySnapshot{
			Date:        date,
			Balance:     balance,
			DailyChange: dailyChange,
			Changes:     changes,
		})
	}

	return &core.ForecastResult{
		Forecast: forecast,
		Summary:  summarize(forecast),
	}, nil
}

// summarize derives the final balance, the minimum balance across all
// snapshots, and the first date the balance dipped below zero.
func summarize(forecast []core.DailySnapshot) core.ForecastSummary {
	summary := core.ForecastSummary{
		FinalBalance:  forecast[len(forecast)-1].Balance,
		LowestBalance: forecast[0].Balance,
	}
	for _, snap := range forecast {
		if snap.Balance.LessThan(summary.LowestBalance) {
			summary.LowestBalance = snap.Balance
		}
		if summary.FirstNegativeDate == nil && snap.Balance.IsNegative() {
			d := snap.Date
			summary.FirstNegativeDate = &d
		}
	}
	return summary
}
