package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/controller/callbacks"
	"github.com/zdorovieplus/clinic_bot/internal/controller/handlers"
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
	"github.com/zdorovieplus/clinic_bot/internal/service"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	appointmentService *service.AppointmentService,
	reviewService *service.ReviewService,
	consultationService *service.ConsultationService,
	subscriberService *service.SubscriberService,
	stateManager *state.Manager,
	viewCache *views.Cache,
	exporter handlers.Exporter,
	adminID string,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(
		appointmentService,
		reviewService,
		consultationService,
		stateManager,
		viewCache,
		exporter,
		adminID,
		logger,
	)

	callbackHandler := callbacks.NewHandler(
		appointmentService,
		reviewService,
		subscriberService,
		stateManager,
		viewCache,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypeExact, c.handlers.HandleExport)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Главное меню"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "cancel", Description: "✖️ Прервать текущий диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
