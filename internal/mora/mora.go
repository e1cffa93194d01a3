// Package mora computes arrears: how many days an unpaid charge is overdue and
// how many days late (or early) a settled charge was paid. These are the only
// lateness functions used by the ledger, the scheduler and the reminder worker.
package mora

import "time"

const day = 24 * time.Hour

// Civil truncates t to its calendar date in UTC so that time-of-day and
// timezone offsets never shift a day count or a due-date comparison.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dias returns the signed number of calendar days from a to b.
func Dias(a, b time.Time) int {
	return int(Civil(b).Sub(Civil(a)) / day)
}

// DiasVencido returns max(0, hoy - vencimiento). Meaningful only while unpaid.
func DiasVencido(vencimiento, hoy time.Time) int {
	if d := Dias(vencimiento, hoy); d > 0 {
		return d
	}
	return 0
}

// DiasRetraso returns pago - vencimiento: positive = late, negative = early.
// Meaningful only once the charge is paid.
func DiasRetraso(pago, vencimiento time.Time) int {
	return Dias(vencimiento, pago)
}
