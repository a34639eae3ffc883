package main

import (
  "context"
  "os"
  "os/signal"
  "syscall"

  "github.com/go-resty/resty/v2"
  "github.com/seatradar/seatradar/internal/app/radar"
  "github.com/seatradar/seatradar/internal/config"
  "github.com/seatradar/seatradar/internal/deps/courses"
  "github.com/seatradar/seatradar/internal/deps/storage/manifest"
  tgdeps "github.com/seatradar/seatradar/internal/deps/telegram"
  "github.com/seatradar/seatradar/internal/guard"
  "github.com/seatradar/seatradar/internal/notifier"
  "github.com/seatradar/seatradar/internal/registry"
  "github.com/seatradar/seatradar/internal/telegram"
  "github.com/seatradar/seatradar/internal/tracker"
  "github.com/seatradar/seatradar/pkg/logger"
  log "github.com/sirupsen/logrus"
)

func main() {
  ctx, cancel := context.WithCancel(context.Background())
  defer cancel()

  logger.Init()

  if err := config.Init(ctx); err != nil {
    log.Fatalf("config.Init: %v", err)
  }

  chatIds, err := config.Get(ctx, config.ChatIds).Int64s()
  if err != nil {
    log.Fatalf("config.Get: %v", err)
  }

  term := config.Get(ctx, config.Term).String()

  store := makeManifestStore(ctx)

  sectionRegistry := registry.NewRegistry(store)

  if err = sectionRegistry.Init(ctx); err != nil {
    log.Fatalf("sectionRegistry.Init: %v", err)
  }

  coursesClient, err := courses.NewClient(
    courses.Config{
      BaseURL:    config.Get(ctx, config.APIBaseURL).String(),
      Username:   config.Get(ctx, config.APIUsername).String(),
      Password:   config.Get(ctx, config.APIPassword).String(),
      SessionTTL: config.Get(ctx, config.SessionTTL).Duration(),
    },
    courses.Dependencies{
      Client: resty.New().SetTimeout(config.Get(ctx, config.RequestTimeout).Duration()),
    })
  if err != nil {
    log.Fatalf("courses.NewClient: %v", err)
  }

  telegramClient, err := tgdeps.NewBotClient(tgdeps.Config{
    Token: config.Get(ctx, config.TelegramToken).String(),
  })
  if err != nil {
    log.Fatalf("tgdeps.NewBotClient: %v", err)
  }

  sectionTracker := tracker.NewTracker(tracker.Config{})

  radarNotifier := notifier.NewNotifier(
    notifier.Config{
      ChatIds: chatIds,
      Term:    term,
    },
    notifier.Dependencies{
      Telegram: telegramClient,
    })

  breaker := guard.NewBreaker(guard.BreakerConfig{})

  commandBot := telegram.NewBot(
    telegram.Config{
      Term:           term,
      AllowedChatIds: chatIds,
    },
    telegram.Dependencies{
      Telegram: telegramClient,
      Registry: sectionRegistry,
      Tracker:  sectionTracker,
      Breaker:  breaker,
    })

  commandBot.Start(ctx)

  radarApp := radar.NewRadar(
    radar.Config{
      Term:        term,
      Interval:    config.Get(ctx, config.CheckInterval).DurationSeconds(),
      Departments: config.Get(ctx, config.Departments).Strings(),
    },
    radar.Dependencies{
      Courses:  coursesClient,
      Registry: sectionRegistry,
      Tracker:  sectionTracker,
      Notifier: radarNotifier,
      Limiter:  guard.NewLimiter(guard.LimiterConfig{}),
      Breaker:  breaker,
    })

  go func() {
    if err := radarApp.Start(ctx); err != nil {
      log.Errorf("radarApp.Start: %v", err)
    }
  }()

  radarNotifier.Announce(ctx, sectionRegistry.Len())

  exitSignal := make(chan os.Signal, 1)
  signal.Notify(exitSignal, syscall.SIGINT, syscall.SIGTERM)
  <-exitSignal

  cancel()
}

func makeManifestStore(ctx context.Context) manifest.Store {
  if host := config.Get(ctx, config.MongodbHost).String(); host != "" {
    mongoConfig := manifest.MongodbConfig{
      Host: host,
      Port: config.Get(ctx, config.MongodbPort).String(),
    }

    if user := config.Get(ctx, config.MongodbUser).String(); user != "" {
      mongoConfig.Authentication = &manifest.MongodbAuthentication{
        User:     user,
        Password: config.Get(ctx, config.MongodbPassword).String(),
      }
    }

    store, err := manifest.NewMongodbStore(ctx, mongoConfig)
    if err != nil {
      log.Fatalf("manifest.NewMongodbStore: %v", err)
    }
    log.Info("manifest store: mongodb")

    return store
  }

  store, err := manifest.NewFileStore(config.Get(ctx, config.ManifestPath).String())
  if err != nil {
    log.Fatalf("manifest.NewFileStore: %v", err)
  }

  return store
}
