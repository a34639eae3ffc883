package tracker

import (
  "github.com/samber/lo"
  "github.com/seatradar/seatradar/internal/models"
)

// ParseSeatInfo interprets the seat fields of one listing record.
// A reading is verified only when both an available and a total count
// could be extracted as non-negative integers; a swapped pair
// (available > total) is corrected rather than rejected, since some
// payload variants invert the field order. Anything less stays
// unverified and must not feed transition decisions.
func ParseSeatInfo(record models.RawSectionRecord) models.SeatInfo {
  available := record.Available
  total := record.Capacity

  // Some payload variants report enrolled+available without capacity.
  if total == nil && available != nil && record.Enrolled != nil && *record.Enrolled >= 0 {
    total = lo.ToPtr(*available + *record.Enrolled)
  }

  if available == nil || total == nil || *available < 0 || *total < 0 {
    return models.SeatInfo{Display: "?"}
  }

  info := models.SeatInfo{
    Available: *available,
    Total:     *total,
    Verified:  true,
  }

  if info.Available > info.Total {
    info.Available, info.Total = info.Total, info.Available
  }

  info.Display = info.String()

  return info
}
