package notifier

import (
  "context"
  "errors"
  "testing"
  "time"

  telegram "github.com/go-telegram/bot"
  tgmodels "github.com/go-telegram/bot/models"
  "github.com/seatradar/seatradar/internal/models"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"
)

type fakeMessenger struct {
  sent    []*telegram.SendMessageParams
  failFor map[int64]bool
}

func (m *fakeMessenger) SendMessage(_ context.Context, params *telegram.SendMessageParams) (*tgmodels.Message, error) {
  if m.failFor[params.ChatID.(int64)] {
    return nil, errors.New("chat unreachable")
  }

  m.sent = append(m.sent, params)

  return &tgmodels.Message{ID: len(m.sent)}, nil
}

func transitions() []models.Transition {
  return []models.Transition{
    {
      Section: models.TrackedSection{Department: "EE", CourseCode: "EE207", Section: "02", CRN: "22716"},
      Seats:   models.SeatInfo{Available: 3, Total: 25, Verified: true, Display: "3/25"},
      FiredAt: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
    },
    {
      Section: models.TrackedSection{Department: "ENGL", CourseCode: "ENGL214", Section: "14", CRN: "20305"},
      Seats:   models.SeatInfo{Available: 1, Total: 40, Verified: true, Display: "1/40"},
      FiredAt: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
    },
  }
}

func TestNotifyEmptyIsNoOp(t *testing.T) {
  messenger := &fakeMessenger{}

  notifier := NewNotifier(Config{ChatIds: []int64{1}}, Dependencies{Telegram: messenger})

  delivered, err := notifier.Notify(context.Background(), nil)
  require.NoError(t, err)
  assert.Zero(t, delivered)
  assert.Empty(t, messenger.sent, "an empty or placeholder message is never sent")
}

func TestNotifyAggregatesOneMessagePerChat(t *testing.T) {
  messenger := &fakeMessenger{}

  notifier := NewNotifier(Config{ChatIds: []int64{1, 2}}, Dependencies{Telegram: messenger})

  delivered, err := notifier.Notify(context.Background(), transitions())
  require.NoError(t, err)
  assert.Equal(t, 2, delivered)
  require.Len(t, messenger.sent, 2)

  text := messenger.sent[0].Text
  assert.Contains(t, text, "EE207-02")
  assert.Contains(t, text, "22716")
  assert.Contains(t, text, "ENGL214-14")
  assert.Contains(t, text, "20305")
  assert.Contains(t, text, "Available: 3")
  assert.Contains(t, text, "2025-09-01 12:00:00")
}

func TestNotifyPartialDeliveryFailure(t *testing.T) {
  messenger := &fakeMessenger{failFor: map[int64]bool{1: true}}

  notifier := NewNotifier(Config{ChatIds: []int64{1, 2}}, Dependencies{Telegram: messenger})

  delivered, err := notifier.Notify(context.Background(), transitions())
  require.NoError(t, err, "one failed recipient must not fail the cycle")
  assert.Equal(t, 1, delivered)
  require.Len(t, messenger.sent, 1)
  assert.EqualValues(t, 2, messenger.sent[0].ChatID)
}

func TestNotifyAllRecipientsFailed(t *testing.T) {
  messenger := &fakeMessenger{failFor: map[int64]bool{1: true, 2: true}}

  notifier := NewNotifier(Config{ChatIds: []int64{1, 2}}, Dependencies{Telegram: messenger})

  delivered, err := notifier.Notify(context.Background(), transitions())
  require.Error(t, err)
  assert.Zero(t, delivered)
}

func TestAnnounce(t *testing.T) {
  messenger := &fakeMessenger{}

  notifier := NewNotifier(Config{ChatIds: []int64{7}, Term: "252"}, Dependencies{Telegram: messenger})
  notifier.Announce(context.Background(), 4)

  require.Len(t, messenger.sent, 1)
  assert.Contains(t, messenger.sent[0].Text, "Term: 252")
  assert.Contains(t, messenger.sent[0].Text, "Tracked sections: 4")
}
