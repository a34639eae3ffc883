package notifier

import (
  "context"
  "fmt"
  "strings"

  telegram "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
  "github.com/seatradar/seatradar/internal/models"
  log "github.com/sirupsen/logrus"
)

// Messenger is the outbound side of the notification channel.
// Satisfied by *telegram.Bot.
type Messenger interface {
  SendMessage(ctx context.Context, params *telegram.SendMessageParams) (*tgmodels.Message, error)
}

type Config struct {
  ChatIds []int64
  Term    string
}

type Dependencies struct {
  Telegram Messenger
}

type Notifier struct {
  config Config
  deps   Dependencies
}

func NewNotifier(config Config, deps Dependencies) *Notifier {
  return &Notifier{
    config: config,
    deps:   deps,
  }
}

// Notify formats one message aggregating all transitions of the cycle
// and delivers it to each recipient independently: one failed chat
// does not block the others. Failed deliveries are logged and never
// retried mid-cycle. Returns the number of successful deliveries; an
// error only when every recipient failed.
func (n *Notifier) Notify(ctx context.Context, transitions []models.Transition) (int, error) {
  if len(transitions) == 0 {
    return 0, nil
  }

  delivered := 0

  for _, chatId := range n.config.ChatIds {
    result := models.Sendable(chatId).
      SetTransitions(transitions).
      BuildAvailabilityMessage()

    if !result.IsValid {
      continue
    }

    if err := n.send(ctx, result.Message); err != nil {
      log.
        WithFields(log.Fields{
          "message.uuid":    result.Message.UUID,
          "message.chat_id": chatId,
        }).
        Errorf("notifier: delivery failed: %v", err)

      continue
    }

    delivered++
  }

  if delivered == 0 {
    return 0, fmt.Errorf("delivery failed for all %d recipients", len(n.config.ChatIds))
  }

  return delivered, nil
}

// Announce sends the startup message. Best effort: failures are
// logged only.
func (n *Notifier) Announce(ctx context.Context, trackedCount int) {
  for _, chatId := range n.config.ChatIds {
    result := models.Sendable(chatId).
      SetTerm(n.config.Term).
      SetTrackedCount(trackedCount).
      BuildStartupMessage()

    if !result.IsValid {
      continue
    }

    if err := n.send(ctx, result.Message); err != nil {
      log.
        WithField("message.chat_id", chatId).
        Errorf("notifier: startup announce failed: %v", err)
    }
  }
}

func (n *Notifier) send(ctx context.Context, message models.SendableMessage) error {
  sent, err := n.deps.Telegram.SendMessage(ctx, &telegram.SendMessageParams{
    ChatID: message.ChatId,
    Text:   strings.TrimSpace(message.Text.Value),
  })
  if err != nil {
    return fmt.Errorf("n.deps.Telegram.SendMessage: %w", err)
  }

  log.
    WithFields(log.Fields{
      "message.uuid":    message.UUID,
      "message.chat_id": message.ChatId,
      "message.sent_id": sent.ID,
      "message.type":    message.Type,
    }).
    Info("notifier: message delivered")

  return nil
}
