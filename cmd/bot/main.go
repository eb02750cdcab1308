package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/zdorovieplus/clinic_bot/internal/app"
	"github.com/zdorovieplus/clinic_bot/internal/config"
	"github.com/zdorovieplus/clinic_bot/internal/controller"
	"github.com/zdorovieplus/clinic_bot/internal/controller/handlers"
	"github.com/zdorovieplus/clinic_bot/internal/controller/state"
	"github.com/zdorovieplus/clinic_bot/internal/controller/views"
	"github.com/zdorovieplus/clinic_bot/internal/service"
	"github.com/zdorovieplus/clinic_bot/internal/storage"
	"github.com/zdorovieplus/clinic_bot/internal/storage/excel"
	"github.com/zdorovieplus/clinic_bot/internal/storage/gsheets"
)

// botNotifier адаптирует телеграм-клиент под контракт уведомлений фоновой сверки
type botNotifier struct {
	bot *bot.Bot
}

func (n *botNotifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// excelExporter и sheetsExporter - источники данных для команды /export
type excelExporter struct {
	store *excel.Store
}

func (e *excelExporter) ExportTarget() (string, string) {
	return e.store.Path(), ""
}

type sheetsExporter struct {
	store *gsheets.Store
}

func (e *sheetsExporter) ExportTarget() (string, string) {
	return "", e.store.URL()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting clinic bot",
		zap.String("environment", cfg.Environment),
		zap.Duration("sync_interval", cfg.SyncInterval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Выбираем бэкенд хранилища: Google Sheets при заданном GOOGLE_SHEETS_ID,
	// иначе локальная книга Excel
	var (
		store    storage.Store
		exporter handlers.Exporter
	)
	if cfg.UseSheets() {
		sheetsStore, err := gsheets.New(ctx, cfg.SheetsID, gsheets.Credentials{
			JSON: cfg.GoogleCredsJSON,
			File: cfg.GoogleCredsFile,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Google Sheets", zap.Error(err))
		}
		logger.Info("✅ Using Google Sheets storage", zap.String("spreadsheet_id", cfg.SheetsID))
		store = sheetsStore
		exporter = &sheetsExporter{store: sheetsStore}
	} else {
		excelStore, err := excel.New(cfg.ExcelFile, logger)
		if err != nil {
			logger.Fatal("Failed to open Excel workbook", zap.Error(err))
		}
		logger.Info("✅ Using local Excel storage", zap.String("file", cfg.ExcelFile))
		store = excelStore
		exporter = &excelExporter{store: excelStore}
	}

	// Сервисы
	appointmentService := service.NewAppointmentService(store, logger)
	reviewService := service.NewReviewService(store, logger)
	consultationService := service.NewConsultationService(store, logger)
	subscriberService := service.NewSubscriberService(store, logger)
	syncService := service.NewSyncService(store, logger)

	stateManager := state.NewManager()
	viewCache := views.NewCache()

	// Telegram бот
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(
		b,
		appointmentService,
		reviewService,
		consultationService,
		subscriberService,
		stateManager,
		viewCache,
		exporter,
		cfg.AdminID,
		logger,
	)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Error("Failed to register handlers", zap.Error(err))
	}

	// Фоновая сверка таблицы: внешние правки превращаются в уведомления
	// и обновление открытых экранов «Мои записи»
	refresher := views.NewRefresher(b, appointmentService, viewCache, logger)
	watcher := app.NewWatcher(syncService, &botNotifier{bot: b}, refresher, cfg.SyncInterval, logger)
	watcher.Start(ctx)
	defer watcher.Stop()

	logger.Info("🚀 Bot is running")
	if err := botController.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot shut down")
}
