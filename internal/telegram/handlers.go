package telegram

import (
  "context"
  "errors"
  "fmt"
  "strings"

  telegram "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
  tgreply "github.com/go-telegram/ui/keyboard/reply"
  "github.com/seatradar/seatradar/internal/registry"
  log "github.com/sirupsen/logrus"
)

func (b *Bot) handleHelp(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := b.acceptChat(update)
  if !ok {
    return
  }

  text := fmt.Sprintf(`Seat radar tracks course sections for term %s and sends a message as soon as a full section gains open seats.

Commands:
add EE207-02 22716 - track section 02 of EE207 with CRN 22716
remove EE207-02 - stop tracking a section
status - tracked sections with last known seats
seats - compact seat overview
courses - tracked course list
help - this message`, b.config.Term)

  reply := tgreply.New(tgreply.WithPrefix("radar"), tgreply.IsOneTimeKeyboard(), tgreply.ResizableKeyboard()).
    Row().Button("status", bot, telegram.MatchTypeExact, b.handleStatus).
    Row().Button("seats", bot, telegram.MatchTypeExact, b.handleSeats).
    Row().Button("courses", bot, telegram.MatchTypeExact, b.handleCourses)

  _, err := bot.SendMessage(ctx, &telegram.SendMessageParams{
    ChatID:      chatId,
    Text:        text,
    ReplyMarkup: reply,
  })
  if err != nil {
    log.Errorf("telegram.handleHelp: bot.SendMessage: %v", err)
  }
}

func (b *Bot) handleAdd(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := b.acceptChat(update)
  if !ok {
    return
  }

  section, err := parseAddCommand(update.Message.Text)
  if err != nil {
    b.reply(ctx, bot, chatId, fmt.Sprintf("Could not read that: %v\nExample: add EE207-02 22716", err))
    return
  }

  err = b.deps.Registry.Add(ctx, section)

  switch {
  case errors.Is(err, registry.ErrDuplicateSection):
    b.reply(ctx, bot, chatId, fmt.Sprintf("%s is already tracked.", section.Label()))

  case errors.Is(err, registry.ErrPersistence):
    log.Errorf("telegram.handleAdd: b.deps.Registry.Add: %v", err)

    b.reply(ctx, bot, chatId, fmt.Sprintf(
      "%s is now tracked, but saving the manifest failed: %v\nThe section is kept in memory; it will be lost on restart unless a later save succeeds.",
      section.Label(), err))

  case err != nil:
    log.Errorf("telegram.handleAdd: b.deps.Registry.Add: %v", err)

    b.reply(ctx, bot, chatId, "Adding the section failed, see the logs.")

  default:
    b.reply(ctx, bot, chatId, fmt.Sprintf(
      "Tracking %s (CRN %s). It is picked up on the next poll cycle.",
      section.Label(), section.CRN))
  }
}

func (b *Bot) handleRemove(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := b.acceptChat(update)
  if !ok {
    return
  }

  courseCode, sectionCode, err := parseRemoveCommand(update.Message.Text)
  if err != nil {
    b.reply(ctx, bot, chatId, fmt.Sprintf("Could not read that: %v\nExample: remove EE207-02", err))
    return
  }

  removed, err := b.deps.Registry.Remove(ctx, courseCode, sectionCode)

  switch {
  case errors.Is(err, registry.ErrSectionNotFound):
    b.reply(ctx, bot, chatId, fmt.Sprintf("%s-%s is not tracked, nothing removed.", courseCode, sectionCode))
    return

  case errors.Is(err, registry.ErrPersistence):
    log.Errorf("telegram.handleRemove: b.deps.Registry.Remove: %v", err)

    b.reply(ctx, bot, chatId, fmt.Sprintf(
      "%s removed, but saving the manifest failed: %v\nThe removal may not survive a restart.",
      removed.Label(), err))

  case err != nil:
    log.Errorf("telegram.handleRemove: b.deps.Registry.Remove: %v", err)

    b.reply(ctx, bot, chatId, "Removing the section failed, see the logs.")
    return

  default:
    b.reply(ctx, bot, chatId, fmt.Sprintf("Stopped tracking %s (CRN %s).", removed.Label(), removed.CRN))
  }

  b.deps.Tracker.Forget(removed.CRN)
}

func (b *Bot) handleStatus(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := b.acceptChat(update)
  if !ok {
    return
  }

  b.reply(ctx, bot, chatId, b.statusText(true))
}

func (b *Bot) handleSeats(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := b.acceptChat(update)
  if !ok {
    return
  }

  b.reply(ctx, bot, chatId, b.statusText(false))
}

func (b *Bot) handleCourses(ctx context.Context, bot *telegram.Bot, update *tgmodels.Update) {
  chatId, ok := b.acceptChat(update)
  if !ok {
    return
  }

  sections := b.deps.Registry.Snapshot()
  if len(sections) == 0 {
    b.reply(ctx, bot, chatId, "No sections tracked. Use: add EE207-02 22716")
    return
  }

  lines := make([]string, 0, len(sections)+1)
  lines = append(lines, fmt.Sprintf("Tracked courses (term %s):", b.config.Term))

  for _, section := range sections {
    lines = append(lines, fmt.Sprintf("%s (CRN %s, dept %s)",
      section.Label(), section.CRN, section.Department))
  }

  b.reply(ctx, bot, chatId, strings.Join(lines, "\n"))
}

func (b *Bot) reply(ctx context.Context, bot *telegram.Bot, chatId int64, text string) {
  _, err := bot.SendMessage(ctx, &telegram.SendMessageParams{
    ChatID: chatId,
    Text:   text,
  })
  if err != nil {
    log.Errorf("telegram.reply: bot.SendMessage: %v", err)
  }
}

func (b *Bot) acceptChat(update *tgmodels.Update) (int64, bool) {
  chatId, ok := findChatId(update)
  if !ok {
    return 0, false
  }

  if len(b.config.AllowedChatIds) == 0 {
    return chatId, true
  }

  for _, allowed := range b.config.AllowedChatIds {
    if allowed == chatId {
      return chatId, true
    }
  }

  log.
    WithField("chat_id", chatId).
    Warn("telegram: command from unknown chat ignored")

  return 0, false
}

func findChatId(update *tgmodels.Update) (int64, bool) {
  if update != nil && update.Message != nil && update.Message.Chat.ID != 0 {
    return update.Message.Chat.ID, true
  }

  return 0, false
}
