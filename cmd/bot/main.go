package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitatrack/internal/bot"
	"vitatrack/internal/clients"
	"vitatrack/internal/config"
	"vitatrack/internal/conversation"
	"vitatrack/internal/events"
	"vitatrack/internal/google"
	"vitatrack/internal/repository"
	"vitatrack/internal/session"
	"vitatrack/internal/tracker"
	"vitatrack/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация Redis (необязательно)
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			log.Printf("Redis unavailable, running in-memory only: %v", err)
			redisClient = nil
		}
	}

	// Хранилище сессий; при живом Redis профили зеркалируются в него
	// и вычитываются обратно на старте
	var persister session.Persister
	if redisClient != nil {
		persister = repository.NewProfileRepository(redisClient)
	}
	store := session.NewStore(persister, log.Default())

	if redisClient != nil {
		profiles, err := repository.NewProfileRepository(redisClient).LoadProfiles(ctx)
		if err != nil {
			log.Printf("Warning: load profiles from Redis: %v", err)
		}
		store.Seed(profiles)
		log.Printf("Loaded %d profiles from Redis", len(profiles))
	}

	// Внешние справочники
	weatherClient := clients.NewWeatherClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout())
	foodClient := clients.NewFoodClient(cfg.Food.BaseURL, cfg.Food.Timeout())
	if redisClient != nil && cfg.Food.CacheTTLSeconds > 0 {
		foodClient.UseRedisCache(redisClient, cfg.Food.CacheTTL())
	}

	eventBus := events.NewEventBus()
	trk := tracker.New(store, eventBus)
	engine := conversation.NewEngine(store, trk, weatherClient, eventBus, log.Default())

	// Синхронизация прогресса в Google Таблицу (необязательно)
	var sheetsWorker *worker.SheetsWorker
	if cfg.Google.GoogleCredentialsFile != "" && cfg.Google.ProgressSpreadSheetId != "" {
		sheetsService, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.ProgressSpreadSheetId)
		if err != nil {
			log.Printf("Warning: Failed to initialize Google Sheets service: %v", err)
		} else if err := sheetsService.TestConnection(ctx); err != nil {
			log.Printf("Warning: Google Sheets connection test failed: %v", err)
		} else {
			if err := sheetsService.WarmUpCache(ctx); err != nil {
				log.Printf("Warning: Google Sheets cache warm-up failed: %v", err)
			}
			retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
			sheetsWorker = worker.NewSheetsWorker(store, sheetsService, redisClient, retryPolicy, log.Default())
			go sheetsWorker.Start(ctx)
			log.Println("Google Sheets service initialized successfully")
		}
	}

	metrics := bot.NewMetrics()
	subscribeTrackerEvents(ctx, eventBus, store, sheetsWorker, metrics)

	if cfg.Monitoring.PrometheusEnabled {
		port := cfg.Monitoring.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go startMetricsServer(ctx, port)
	}

	// Создание и запуск бота
	telegramBot, err := bot.NewBot(cfg.Telegram.BotToken, cfg, engine, trk, store, foodClient, metrics, log.Default())
	if err != nil {
		log.Fatal("Ошибка создания бота:", err)
	}

	log.Println("Бот запущен...")
	go telegramBot.Start()

	<-ctx.Done()
	log.Println("Shutdown signal received...")

	telegramBot.Stop()
	if redisClient != nil {
		_ = repository.Close(redisClient)
	}
}

// subscribeTrackerEvents подвязывает метрики и синхронизацию таблицы
// к событиям трекера.
func subscribeTrackerEvents(ctx context.Context, bus *events.EventBus, store *session.Store, sheetsWorker *worker.SheetsWorker, metrics *bot.Metrics) {
	logType := map[string]string{
		events.EventWaterLogged:   "water",
		events.EventFoodLogged:    "food",
		events.EventWorkoutLogged: "workout",
	}

	syncHandler := func(ev events.Event) error {
		var payload events.ProgressEventPayload
		if err := events.DecodePayload(ev, &payload); err != nil {
			return fmt.Errorf("decode payload for %s: %w", ev.Type, err)
		}

		if t, ok := logType[ev.Type]; ok {
			metrics.LogsTotal.WithLabelValues(t).Inc()
		}
		if ev.Type == events.EventProfileCreated {
			metrics.ProfilesTotal.Set(float64(store.Count()))
		}

		if sheetsWorker != nil {
			if err := sheetsWorker.EnqueueTask(ctx, worker.SyncTask{Type: worker.TaskUpsertProfile, UserID: payload.UserID}); err != nil {
				return fmt.Errorf("enqueue sync for %d: %w", payload.UserID, err)
			}
		}
		return nil
	}

	bus.Subscribe(events.EventProfileCreated, syncHandler)
	bus.Subscribe(events.EventWaterLogged, syncHandler)
	bus.Subscribe(events.EventFoodLogged, syncHandler)
	bus.Subscribe(events.EventWorkoutLogged, syncHandler)
}

func startMetricsServer(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("metrics server error: %v", err)
	}
}
