package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultSyncInterval = 2 * time.Second

type Config struct {
	TelegramToken string
	Environment   string

	// Бэкенд хранилища: при заданном SheetsID используется Google Sheets,
	// иначе локальная книга Excel
	SheetsID        string
	GoogleCredsJSON string
	GoogleCredsFile string
	ExcelFile       string

	// Интервал фоновой сверки таблицы
	SyncInterval time.Duration

	// ID администратора для команды /export (опционально)
	AdminID string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken:   os.Getenv("BOT_TOKEN"),
		Environment:     os.Getenv("ENV"),
		SheetsID:        os.Getenv("GOOGLE_SHEETS_ID"),
		GoogleCredsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleCredsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		ExcelFile:       os.Getenv("EXCEL_FILE"),
		AdminID:         os.Getenv("ADMIN_ID"),
		SyncInterval:    defaultSyncInterval,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ExcelFile == "" {
		cfg.ExcelFile = "clinic_data.xlsx"
	}

	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SYNC_INTERVAL is not a valid duration: %w", err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("SYNC_INTERVAL must be positive, got %s", interval)
		}
		cfg.SyncInterval = interval
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required but not set")
	}

	return cfg, nil
}

// UseSheets сообщает, выбран ли удалённый бэкенд
func (c *Config) UseSheets() bool {
	return c.SheetsID != ""
}
