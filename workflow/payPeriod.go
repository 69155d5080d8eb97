package workflow

import "time"

const periodDateLayout = "2006-01-02"

// PayPeriod is a fixed semi-monthly window: the 1st through the 15th, or the
// 16th through the last day of the month. Bounds are ISO date strings.
type PayPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// PeriodFor buckets a work date into its pay period. Total over all valid
// calendar dates; every date is contained in exactly one period per month.
func PeriodFor(t time.Time) PayPeriod {
	year, month, day := t.Date()

	var start, end time.Time
	if day <= 15 {
		start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(year, month, 16, 0, 0, 0, 0, time.UTC)
		// Day 0 of the next month normalizes to the last day of this one,
		// which keeps leap-year February correct.
		end = time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	}

	return PayPeriod{
		StartDate: start.Format(periodDateLayout),
		EndDate:   end.Format(periodDateLayout),
	}
}
