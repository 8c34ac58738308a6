package utils

import (
	"fmt"
	"time"

	"propertypay-backend/internal/domain"
)

// DaysInMonth returns the number of days in a given month.
func DaysInMonth(year, month int) int {
	if month == 2 {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

// NextPaymentDate computes the payment date following current for the given
// frequency. Daily and weekly advance by a fixed day offset. Monthly,
// quarterly and yearly use calendar-month arithmetic with day clamping, so
// Jan 31 + 1 month lands on Feb 28 (or Feb 29 in a leap year), never on
// Mar 2/3 as time.AddDate would produce.
func NextPaymentDate(current time.Time, frequency domain.Frequency) (time.Time, error) {
	switch frequency {
	case domain.FrequencyDaily:
		return current.AddDate(0, 0, 1), nil
	case domain.FrequencyWeekly:
		return current.AddDate(0, 0, 7), nil
	case domain.FrequencyMonthly:
		return addMonthsClamped(current, 1), nil
	case domain.FrequencyQuarterly:
		return addMonthsClamped(current, 3), nil
	case domain.FrequencyYearly:
		return addMonthsClamped(current, 12), nil
	default:
		return time.Time{}, fmt.Errorf("unknown frequency %q", frequency)
	}
}

// addMonthsClamped advances t by months, clamping the day-of-month to the
// length of the target month.
func addMonthsClamped(t time.Time, months int) time.Time {
	year := t.Year()
	month := int(t.Month()) + months
	for month > 12 {
		month -= 12
		year++
	}

	day := t.Day()
	if max := DaysInMonth(year, month); day > max {
		day = max
	}

	return time.Date(year, time.Month(month), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ProRatedAmount computes partial-period billing as the fraction of days
// active over days in the period, inclusive of both period endpoints.
// Result is truncated toward zero to stay in whole minor units.
func ProRatedAmount(fullAmount int64, periodStart, periodEnd, activeFrom time.Time) (int64, error) {
	if periodEnd.Before(periodStart) {
		return 0, fmt.Errorf("period end %s before period start %s", periodEnd.Format("2006-01-02"), periodStart.Format("2006-01-02"))
	}
	if activeFrom.Before(periodStart) {
		activeFrom = periodStart
	}
	if activeFrom.After(periodEnd) {
		return 0, nil
	}

	daysInPeriod := wholeDaysBetween(periodStart, periodEnd) + 1
	daysActive := wholeDaysBetween(activeFrom, periodEnd) + 1
	return fullAmount * int64(daysActive) / int64(daysInPeriod), nil
}

// AdvanceNextPaymentDate strictly advances NextPaymentDate by one period.
// Called when a charge is initiated so the next sweep cannot charge the same
// period twice. Completion is recorded separately via SettleCollection once
// the charge resolves.
func AdvanceNextPaymentDate(s *domain.RecurringSchedule) error {
	next, err := NextPaymentDate(s.NextPaymentDate, s.Frequency)
	if err != nil {
		return err
	}
	s.NextPaymentDate = next
	return nil
}

// SettleCollection records the terminal outcome of an initiated charge.
// Success increments CompletedPayments and deactivates the plan once a
// termination condition is met. Failure re-arms the schedule at the charge's
// original due date so the missed period is retried on the next sweep.
func SettleCollection(s *domain.RecurringSchedule, succeeded bool, dueDate, now time.Time) {
	if succeeded {
		s.CompletedPayments++
		if s.Finished(now) {
			s.IsActive = false
		}
		return
	}
	if dueDate.Before(s.NextPaymentDate) {
		s.NextPaymentDate = dueDate
	}
}

func wholeDaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
