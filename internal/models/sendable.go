package models

import (
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
)

type SendableType string

const (
  AvailabilitySendableType SendableType = "availability"
  StartupSendableType      SendableType = "startup"
)

type SendableMessage struct {
  UUID   string       `bson:"uuid" json:"uuid"`
  ChatId int64        `bson:"chat_id" json:"chat_id"`
  Type   SendableType `bson:"type" json:"type"`
  Text   SendableText `bson:"text" json:"text"`
}

type SendableText struct {
  Value string `bson:"value" json:"value"`
}

type BuildResult struct {
  Message SendableMessage
  IsValid bool
}

type Builder struct {
  chatId       int64
  transitions  []Transition
  trackedCount int
  term         string
}

func Sendable(chatId int64) Builder {
  return Builder{chatId: chatId}
}

func (b Builder) SetTransitions(transitions []Transition) Builder {
  b.transitions = transitions
  return b
}

func (b Builder) SetTrackedCount(count int) Builder {
  b.trackedCount = count
  return b
}

func (b Builder) SetTerm(term string) Builder {
  b.term = term
  return b
}

// BuildAvailabilityMessage aggregates all transitions fired in one
// polling cycle into a single message. Empty input yields an invalid
// result: an empty or placeholder notification is never sent.
func (b Builder) BuildAvailabilityMessage() BuildResult {
  if len(b.transitions) == 0 {
    return BuildResult{IsValid: false}
  }

  text := "📢 Seats available!\n"

  for _, transition := range b.transitions {
    enrolled := transition.Seats.Total - transition.Seats.Available

    text += fmt.Sprintf(`
Course: %s
CRN: %s
Available: %d
Enrolled: %d/%d
`,
      transition.Section.Label(),
      transition.Section.CRN,
      transition.Seats.Available,
      enrolled, transition.Seats.Total)
  }

  text += fmt.Sprintf("\nRegister now!\n%s",
    b.transitions[0].FiredAt.Format(time.DateTime))

  return BuildResult{
    Message: SendableMessage{
      UUID:   uuid.NewString(),
      ChatId: b.chatId,
      Type:   AvailabilitySendableType,
      Text: SendableText{
        Value: strings.TrimSpace(text),
      },
    },
    IsValid: true,
  }
}

func (b Builder) BuildStartupMessage() BuildResult {
  text := fmt.Sprintf(`Seat radar started.
Term: %s
Tracked sections: %d`,
    b.term, b.trackedCount)

  return BuildResult{
    Message: SendableMessage{
      UUID:   uuid.NewString(),
      ChatId: b.chatId,
      Type:   StartupSendableType,
      Text: SendableText{
        Value: strings.TrimSpace(text),
      },
    },
    IsValid: true,
  }
}
