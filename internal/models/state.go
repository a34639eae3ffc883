package models

import (
  "fmt"
  "time"
)

// SeatInfo is the result of interpreting a raw record's seat fields.
// Verified is true only if both counts were unambiguously extracted
// and internally consistent after correcting a swapped pair.
type SeatInfo struct {
  Available int64  `bson:"available" json:"available"`
  Total     int64  `bson:"total" json:"total"`
  Verified  bool   `bson:"verified" json:"verified"`
  Display   string `bson:"display" json:"display"`
}

func (s SeatInfo) String() string {
  if !s.Verified {
    return "?"
  }
  return fmt.Sprintf("%d/%d", s.Available, s.Total)
}

// SectionState is the last observation recorded for one tracked
// section. Seat counts reflect the last verified observation only;
// LastObservedAt moves on every observation.
type SectionState struct {
  LastVerified       bool      `bson:"last_verified" json:"last_verified"`
  LastAvailableSeats int64     `bson:"last_available_seats" json:"last_available_seats"`
  LastSeatsDisplay   string    `bson:"last_seats_display" json:"last_seats_display"`
  LastObservedAt     time.Time `bson:"last_observed_at" json:"last_observed_at"`
}

// Transition is a became-available event: a section whose verified
// available count moved from zero or unknown to positive.
type Transition struct {
  Section TrackedSection `bson:"section" json:"section"`
  Seats   SeatInfo       `bson:"seats" json:"seats"`
  FiredAt time.Time      `bson:"fired_at" json:"fired_at"`
}
