package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smena/internal/worktime"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// cbExportSessions собирает все смены в .xlsx и отправляет файл админу.
func (b *Bot) cbExportSessions(ctx context.Context, callback *tgbotapi.CallbackQuery, _ string) {
	chatID := callback.Message.Chat.ID

	filePath, err := b.exportSessionsToExcel(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Ошибка при выгрузке смен")
		b.sendMessage(chatID, "Ошибка при формировании выгрузки.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filePath))
	if _, err := b.tgService.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("file_path", filePath).Msg("Не удалось отправить файл выгрузки")
		b.sendMessage(chatID, "Не удалось отправить файл выгрузки.")
	}
}

// exportSessionsToExcel создает Excel файл со всеми сменами
func (b *Bot) exportSessionsToExcel(ctx context.Context) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	// Все смены, без пагинации
	sessions, err := b.sessionService.ListAllSessions(ctx, 0, 0)
	if err != nil {
		return "", fmt.Errorf("error getting sessions: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Смены"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Telegram ID", "Дата начала", "Дата окончания",
		"Часы работы", "Место / позиция", "Широта", "Долгота",
		"Ставка, ₽/час", "Заработано, ₽",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	now := time.Now().UTC()
	for row, session := range sessions {
		endedAt := notEndedLabel
		if session.EndedAt != nil {
			endedAt = worktime.FormatLocalSeconds(*session.EndedAt)
		}

		values := []interface{}{
			session.ID,
			session.WorkerTelegramID,
			worktime.FormatLocalSeconds(session.CreatedAt),
			endedAt,
			worktime.Elapsed(session, now).Hours(),
			session.Position,
			session.Latitude,
			session.Longitude,
		}
		if session.HourRateKopecks != nil {
			values = append(values,
				float64(*session.HourRateKopecks)/100,
				float64(worktime.PaymentKopecks(session, now))/100,
			)
		} else {
			values = append(values, "", "")
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "F", 22)
	_ = f.SetColWidth(sheetName, "G", "J", 14)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("sessions_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Int("sessions", len(sessions)).Msg("Excel file created")
	return filePath, nil
}
