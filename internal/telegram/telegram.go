package telegram

import (
  "context"

  telegram "github.com/go-telegram/bot"
  "github.com/seatradar/seatradar/internal/guard"
  "github.com/seatradar/seatradar/internal/registry"
  "github.com/seatradar/seatradar/internal/tracker"
)

type Config struct {
  Term string

  // AllowedChatIds restricts who may issue commands. Empty allows
  // anyone, which only makes sense for private test bots.
  AllowedChatIds []int64
}

type Dependencies struct {
  Telegram *telegram.Bot
  Registry *registry.Registry
  Tracker  *tracker.Tracker
  Breaker  *guard.Breaker
}

// Bot is the control plane over the tracked-section manifest: add and
// remove sections, query status. Mutations interleave safely with a
// running poll cycle and take effect on the next one.
type Bot struct {
  config Config
  deps   Dependencies
}

func NewBot(config Config, deps Dependencies) *Bot {
  return &Bot{
    config: config,
    deps:   deps,
  }
}

func (b *Bot) Start(ctx context.Context) {
  b.registerHandlers()

  go b.deps.Telegram.Start(ctx)
}
