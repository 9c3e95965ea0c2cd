/*
calendar.go - Business-day arithmetic

PURPOSE:
  Counts weekdays (Monday-Friday) in closed date intervals. This is the only
  calculation behind a request's day count: a pure Monday-to-Friday rule with
  no holiday calendar.

CONTRACT:
  BusinessDays(start, end) counts weekdays in [start, end] inclusive.
  If end is before start the count is 0 - an inverted interval contains
  no days, it is not an error here. Submission validation turns a zero
  count into a refusal.

EXAMPLE:
  Tue 2026-02-10 .. Sat 2026-02-14 -> 4 (Tue, Wed, Thu, Fri; Sat excluded)
*/
package vacation

// BusinessDays returns the number of weekdays in the closed interval
// [start, end]. Pure and deterministic; no holidays are considered.
func BusinessDays(start, end Date) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}

	count := 0
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if !d.IsWeekend() {
			count++
		}
	}
	return count
}

// VacationDays enumerates the individual business days a request covers.
// Used by the calendar view; weekends inside the span are skipped.
func VacationDays(start, end Date) []Date {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil
	}

	var days []Date
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if !d.IsWeekend() {
			days = append(days, d)
		}
	}
	return days
}
