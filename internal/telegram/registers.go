package telegram

import (
  telegram "github.com/go-telegram/bot"
)

func (b *Bot) registerHandlers() {
  b.deps.Telegram.RegisterHandler(telegram.HandlerTypeMessageText, "/start",
    telegram.MatchTypeExact, b.handleHelp)

  b.deps.Telegram.RegisterHandler(telegram.HandlerTypeMessageText, "help",
    telegram.MatchTypeExact, b.handleHelp)

  b.deps.Telegram.RegisterHandler(telegram.HandlerTypeMessageText, "add ",
    telegram.MatchTypePrefix, b.handleAdd)

  b.deps.Telegram.RegisterHandler(telegram.HandlerTypeMessageText, "remove ",
    telegram.MatchTypePrefix, b.handleRemove)

  b.deps.Telegram.RegisterHandler(telegram.HandlerTypeMessageText, "status",
    telegram.MatchTypeExact, b.handleStatus)

  b.deps.Telegram.RegisterHandler(telegram.HandlerTypeMessageText, "seats",
    telegram.MatchTypeExact, b.handleSeats)

  b.deps.Telegram.RegisterHandler(telegram.HandlerTypeMessageText, "courses",
    telegram.MatchTypeExact, b.handleCourses)
}
