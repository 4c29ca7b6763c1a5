package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daniil11ru/tracker/cli/tracker/api"
	"github.com/daniil11ru/tracker/cli/tracker/config"
	"github.com/daniil11ru/tracker/cli/tracker/devices"
	"github.com/daniil11ru/tracker/cli/tracker/domain"
	"github.com/daniil11ru/tracker/cli/tracker/hub"
	"github.com/daniil11ru/tracker/cli/tracker/server"
	"github.com/daniil11ru/tracker/cli/tracker/storage"
	"github.com/daniil11ru/tracker/cli/tracker/util"

	"github.com/joho/godotenv"
	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Не удалось получить конфиг: %v", err)
		return
	}

	configureLogging(cfg)

	if cfg.MigrationsPath != "" {
		if err := applyMigrations(cfg); err != nil {
			log.Fatalf("Не удалось применить миграции: %v", err)
			return
		}
	}

	latest := storage.NewLatestStore()
	tracks := storage.NewTrackStore()
	registry := devices.NewRegistry()
	fanout := hub.New(cfg.SubscriberBuffer)

	var sinks storage.Saver
	if len(cfg.Store) > 0 {
		repo := storage.NewRepository()
		if err := repo.LoadStorages(cfg.Store); err != nil {
			log.Fatalf("Не удалось инициализировать хранилища: %v", err)
			return
		}
		defer repo.Close()

		asyncRepo := storage.NewAsyncRepository(repo, cfg.StoreBuffer, cfg.StoreWorkers)
		defer asyncRepo.Close()
		sinks = asyncRepo
	}

	saveFix := &domain.SaveFix{
		Registry: registry,
		Latest:   latest,
		Tracks:   tracks,
		Sinks:    sinks,
		Hub:      fanout,
	}

	retention := &domain.Retention{
		Tracks:         tracks,
		RetentionDays:  cfg.RetentionDays,
		CronExpression: cfg.RetentionCron,
	}
	if err := retention.Start(); err != nil {
		log.Fatalf("Не удалось запланировать очистку: %v", err)
		return
	}
	defer retention.Stop()

	go runServer(cfg, saveFix)

	go runApi(cfg, registry, latest, tracks, fanout)

	select {}
}

func getConfig(configFilePath string) (config.Settings, error) {
	var c config.Settings
	var err error

	if configFilePath == "" {
		return c, &util.ErrorString{S: "не задан путь до конфига"}
	}

	c, err = config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("ошибка парсинга конфига: %v", err)
	}

	return c, nil
}

func configureLogging(cfg config.Settings) {
	log.SetLevel(cfg.GetLogLevel())

	consoleFmt := &log.TextFormatter{ForceColors: true, FullTimestamp: false}
	log.SetFormatter(consoleFmt)
	log.SetOutput(os.Stdout)

	if cfg.LogFilePath != "" {
		logDir := filepath.Dir(cfg.LogFilePath)
		if _, err := os.Stat(logDir); os.IsNotExist(err) {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				log.Fatalf("Не получилось создать директорию для логов: %v", err)
			}
		}

		lumberjackLogger := &lumberjack.Logger{
			Filename:   cfg.LogFilePath,
			MaxSize:    100,
			MaxBackups: 366,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}

		fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
		hook := lfshook.NewHook(lfshook.WriterMap{
			log.PanicLevel: lumberjackLogger,
			log.FatalLevel: lumberjackLogger,
			log.ErrorLevel: lumberjackLogger,
			log.WarnLevel:  lumberjackLogger,
			log.InfoLevel:  lumberjackLogger,
			log.DebugLevel: lumberjackLogger,
			log.TraceLevel: lumberjackLogger,
		}, fileFmt)

		log.AddHook(hook)
	}
}

func runServer(cfg config.Settings, saveFix *domain.SaveFix) {
	srv := server.New(
		cfg.GetListenAddress(),
		cfg.GetEmptyConnTTL(),
		cfg.MaxLineBytes,
		cfg.GetRateBucketWindow(),
		cfg.RateLimitPerBucket,
		saveFix,
	)
	if err := srv.Run(); err != nil {
		log.Fatalf("Не удалось запустить сервер на %s: %v", cfg.GetListenAddress(), err)
	}
}

func runApi(cfg config.Settings, registry *devices.Registry, latest *storage.LatestStore, tracks *storage.TrackStore, fanout *hub.Hub) {
	handler := api.NewHandler(registry, latest, tracks, fanout)
	controller := api.NewController(handler, cfg.ApiKey, cfg.CorsOrigins)

	log.Infof("Запуск API на порту %d", cfg.ApiPort)
	if err := controller.Run(cfg.ApiPort); err != nil {
		log.Fatal(err)
	}
}

func applyMigrations(cfg config.Settings) error {
	store, ok := cfg.Store["postgresql"]
	if !ok {
		log.Info("PostgreSQL не настроен, миграции пропущены")
		return nil
	}

	databaseUrl := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		store["user"], store["password"], store["host"], store["port"], store["database"], store["sslmode"])

	m, err := migrate.New(cfg.MigrationsPath, databaseUrl)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("Нет новых миграций для применения")
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %v", err)
	}

	log.Info("Миграции успешно применены")
	return nil
}
