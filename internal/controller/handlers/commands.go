package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/config"
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.logger.Info("User started the bot",
		zap.Int64("telegram_id", update.Message.From.ID),
		zap.String("first_name", update.Message.From.FirstName))

	welcomeText := fmt.Sprintf("Здравствуйте! Добро пожаловать в %s. Чем могу помочь?", config.Clinic.Name)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        welcomeText,
		ReplyMarkup: views.MainMenuKeyboard(),
	})
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/start - Главное меню\n" +
		"/help - Показать эту справку\n" +
		"/cancel - Прервать текущую операцию\n\n" +
		"Запись на приём, отзывы и консультации доступны кнопками главного меню."

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Нет активных операций для отмены.",
		})
		return
	}

	h.stateManager.Clear(telegramID)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✅ Операция отменена.",
	})
}

// HandleExport обрабатывает команду /export - администратору отправляется
// текущий файл книги либо ссылка на таблицу Google Sheets
func (h *Handlers) HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userID := update.Message.From.ID
	if h.adminID != "" && strconv.FormatInt(userID, 10) != h.adminID {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Команда доступна только администратору",
		})
		return
	}

	filePath, url := h.exporter.ExportTarget()
	switch {
	case filePath != "":
		h.sendWorkbook(ctx, b, update.Message.Chat.ID, filePath)
	case url != "":
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Ссылка на таблицу: " + url,
		})
	default:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Не удалось найти источник данных для экспорта.",
		})
	}
}

func (h *Handlers) sendWorkbook(ctx context.Context, b *bot.Bot, chatID int64, path string) {
	f, err := os.Open(path)
	if err != nil {
		h.logger.Error("Failed to open workbook for export", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Не удалось отправить файл: " + err.Error(),
		})
		return
	}
	defer f.Close()

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: filepath.Base(path),
			Data:     f,
		},
	})
	if err != nil {
		h.logger.Error("Failed to send workbook", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Не удалось отправить файл: " + err.Error(),
		})
	}
}
