// Package worktime считает отработанное время и выплату по сессии.
// Чистые функции без состояния; все расчёты в UTC.
package worktime

import (
	"time"

	"smena/internal/models"
)

const secondsPerHour = 3600

// Elapsed возвращает отработанное время сессии относительно now.
// Для закрытой сессии берётся её EndedAt. Отрицательная длительность
// (сбой часов или кривая ручная правка) зажимается в ноль.
func Elapsed(session *models.WorkSession, now time.Time) time.Duration {
	if session == nil {
		return 0
	}

	end := now.UTC()
	if session.EndedAt != nil {
		end = session.EndedAt.UTC()
	}

	d := end.Sub(session.CreatedAt.UTC())
	if d < 0 {
		return 0
	}
	return d
}

// Components раскладывает длительность на дни, часы, минуты и секунды.
func Components(d time.Duration) (days, hours, minutes, seconds int) {
	if d < 0 {
		d = 0
	}

	total := int(d.Seconds())
	days = total / 86400
	rem := total % 86400
	hours = rem / secondsPerHour
	rem %= secondsPerHour
	minutes = rem / 60
	seconds = rem % 60
	return days, hours, minutes, seconds
}

// PaymentKopecks считает выплату в копейках: ставка * секунды / 3600
// с отбрасыванием дробной части. Без ставки выплата всегда 0.
func PaymentKopecks(session *models.WorkSession, now time.Time) int64 {
	if session == nil || session.HourRateKopecks == nil {
		return 0
	}

	seconds := int64(Elapsed(session, now).Seconds())
	return *session.HourRateKopecks * seconds / secondsPerHour
}
