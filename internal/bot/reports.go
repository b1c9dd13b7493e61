package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smena/internal/models"
	"smena/internal/worktime"
)

const notEndedLabel = "Еще не закончена"

// formatDuration собирает строку вида " 1 дней 2 часов 5 минут".
// Секунды показываются только для совсем коротких смен.
func formatDuration(d time.Duration) string {
	days, hours, minutes, seconds := worktime.Components(d)

	var sb strings.Builder
	sb.WriteString("Время работы: ")
	if days > 0 {
		sb.WriteString(fmt.Sprintf(" %d дней", days))
	}
	if hours > 0 {
		sb.WriteString(fmt.Sprintf(" %d часов", hours))
	}
	if minutes > 0 {
		sb.WriteString(fmt.Sprintf(" %d минут", minutes))
	}
	if days == 0 && hours == 0 && minutes == 0 {
		sb.WriteString(fmt.Sprintf("%d секунд", seconds))
	}
	return sb.String()
}

// sessionDetails — общий блок отчета по сессии: время работы, адрес,
// позиция и, если ставка задана, начисленная оплата.
func (b *Bot) sessionDetails(ctx context.Context, session *models.WorkSession) string {
	now := time.Now().UTC()

	var sb strings.Builder
	sb.WriteString(formatDuration(worktime.Elapsed(session, now)))
	sb.WriteString(fmt.Sprintf("\nАдрес: %s", b.geocoder.ResolveAddress(ctx, session.Latitude, session.Longitude)))
	sb.WriteString(fmt.Sprintf("\nМесто / позиция: %s", session.Position))

	if session.HourRateKopecks != nil {
		rateRub := float64(*session.HourRateKopecks) / 100
		earnedRub := float64(worktime.PaymentKopecks(session, now)) / 100
		sb.WriteString(fmt.Sprintf("\nИндивидуальная ставка: %.2f ₽ / час", rateRub))
		sb.WriteString(fmt.Sprintf("\nИтого заработано: %.2f ₽", earnedRub))
	}

	return sb.String()
}

// sessionPeriod — строки с датами начала и окончания в местном времени.
func sessionPeriod(session *models.WorkSession) string {
	endDate := notEndedLabel
	if session.EndedAt != nil {
		endDate = worktime.FormatLocalSeconds(*session.EndedAt)
	}
	return fmt.Sprintf("Дата начала: %s\nДата окончания: %s",
		worktime.FormatLocalSeconds(session.CreatedAt), endDate)
}

// sessionReport — полный отчет: период + детали.
func (b *Bot) sessionReport(ctx context.Context, title string, session *models.WorkSession) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, sessionPeriod(session), b.sessionDetails(ctx, session))
}

// startWorkReport — сообщение при старте смены (работнику и админам).
func (b *Bot) startWorkReport(ctx context.Context, header string, session *models.WorkSession) string {
	return fmt.Sprintf(
		"%s\nНачало: %s\nСтавка пользователя: Не задана\n\nАдрес: %s\nМесто: %s",
		header,
		worktime.FormatLocal(session.CreatedAt),
		b.geocoder.ResolveAddress(ctx, session.Latitude, session.Longitude),
		session.Position,
	)
}

// sessionInfoText — карточка сессии для админской панели.
func (b *Bot) sessionInfoText(ctx context.Context, session *models.WorkSession) string {
	return fmt.Sprintf("Информация о сессии:\n%s\n%s", sessionPeriod(session), b.sessionDetails(ctx, session))
}
