package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"smena/internal/api"
	"smena/internal/bot"
	"smena/internal/config"
	"smena/internal/database"
	"smena/internal/events"
	"smena/internal/geocoder"
	"smena/internal/logging"
	"smena/internal/metrics"
	"smena/internal/models"
	"smena/internal/notify"
	"smena/internal/repository"
	"smena/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, stateService := initStateService(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics.Register()
	botMetrics := bot.NewMetrics()

	eventBus := events.NewEventBus()
	subscribeSessionEvents(eventBus, botMetrics, &logger)

	// Инициализация бизнес-сервисов
	sessionService := service.NewSessionWorkService(db, eventBus, &logger)
	workerService := service.NewWorkerAccountService(db, cfg.Admins, &logger)
	geo := geocoder.NewNominatimGeocoder(cfg.Geocoder, &logger)

	if cfg.API.Enabled {
		apiServer := api.NewHTTPServer(cfg.API, db, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			_ = apiServer.Shutdown(context.Background())
		}()
	} else if cfg.Monitoring.PrometheusEnabled {
		// Без API метрики отдаёт отдельный слушатель
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
			logger.Info().Str("addr", addr).Msg("Prometheus metrics запущены")
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error().Err(err).Msg("Metrics server error")
			}
		}()
	}

	return startBot(ctx, cfg, stateService, eventBus, sessionService, workerService, geo, botMetrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	adminsPath := os.Getenv("ADMINS_PATH")
	if adminsPath == "" {
		adminsPath = "configs/admins.yaml"
	}
	adminsData, err := os.ReadFile(adminsPath)
	if err != nil {
		logger.Error().Err(err).Msgf("Ошибка чтения %s", adminsPath)
		return nil, zerolog.Logger{}, closer, err
	}

	var adminsConfig struct {
		Admins []int64 `yaml:"admins"`
	}
	if err := yaml.Unmarshal(adminsData, &adminsConfig); err != nil {
		logger.Error().Err(err).Msg("Ошибка парсинга admins.yaml")
		return nil, zerolog.Logger{}, closer, err
	}

	if err := config.ValidateAdmins(adminsConfig.Admins); err != nil {
		logger.Error().Err(err).Msg("Admins validation failed")
		return nil, zerolog.Logger{}, closer, err
	}
	cfg.Admins = adminsConfig.Admins

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
			return err
		}
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initStateService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.StateService) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primaryRepo := repository.NewRedisStateRepository(redisClient, time.Duration(models.DefaultRedisTTL)*time.Second)
	fallbackRepo := repository.NewMemoryStateRepository(time.Duration(models.DefaultRedisTTL) * time.Second)
	stateRepo := repository.NewFailoverStateRepository(primaryRepo, fallbackRepo, logger)
	return redisClient, service.NewStateService(stateRepo, logger)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	stateService *service.StateService,
	eventBus *events.EventBus,
	sessionService *service.SessionWorkService,
	workerService *service.WorkerAccountService,
	geo *geocoder.NominatimGeocoder,
	botMetrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	if cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Error().Msg("Задайте токен бота в config.yaml")
		return os.ErrInvalid
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	botWrapper := bot.NewBotWrapper(botAPI)
	tgService := service.NewTelegramService(botWrapper)

	retryPolicy := notify.RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2,
	}
	notifier := notify.NewNotifier(tgService, retryPolicy, logger)

	telegramBot, err := bot.NewBot(
		tgService, cfg, stateService, eventBus,
		sessionService, workerService, geo, notifier,
		botMetrics, logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

// subscribeSessionEvents связывает шину событий с метриками: счётчики
// стартов и завершений смен плюс гистограмма длительности.
func subscribeSessionEvents(bus *events.EventBus, botMetrics *bot.Metrics, logger *zerolog.Logger) {
	if bus == nil || botMetrics == nil {
		return
	}

	decode := func(ev *events.Event) (events.SessionEventPayload, error) {
		var payload events.SessionEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return payload, err
		}
		return payload, nil
	}

	bus.Subscribe(events.EventSessionStarted, func(ev *events.Event) error {
		botMetrics.SessionsStarted.Inc()
		return nil
	})

	bus.Subscribe(events.EventSessionEnded, func(ev *events.Event) error {
		botMetrics.SessionsEnded.Inc()

		payload, err := decode(ev)
		if err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		if payload.EndedAt != nil {
			botMetrics.SessionDuration.Observe(payload.EndedAt.Sub(payload.StartedAt).Seconds())
		}
		return nil
	})
}
