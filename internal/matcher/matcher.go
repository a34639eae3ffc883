package matcher

import (
  "strings"

  set "github.com/deckarep/golang-set/v2"
  "github.com/seatradar/seatradar/internal/models"
  log "github.com/sirupsen/logrus"
)

// Match maps each tracked section onto at most one entry of its
// department listing. CRN equality after trimming is the sole match
// strategy: course code and section fields are inconsistently
// populated across upstream payload variants and using them as a
// fallback could attach one section's seat count to another section's
// identity. A section with no matching entry is reported with a nil
// record; that is an observation gap, not an error.
func Match(tracked []models.TrackedSection, listingsByDepartment map[string][]models.RawSectionRecord) []models.MatchResult {
  results := make([]models.MatchResult, 0, len(tracked))

  duplicates := make(map[string]set.Set[int])

  for department, listings := range listingsByDepartment {
    seen := make(map[string]int, len(listings))

    for index, record := range listings {
      crn := strings.TrimSpace(record.CRN)
      if crn == "" {
        continue
      }

      if firstIndex, ok := seen[crn]; ok {
        if duplicates[department] == nil {
          duplicates[department] = set.NewSet(firstIndex)
        }
        duplicates[department].Add(index)

        continue
      }

      seen[crn] = index
    }
  }

  for department, indexes := range duplicates {
    log.
      WithFields(log.Fields{
        "department": department,
        "indexes":    indexes.ToSlice(),
      }).
      Warn("matcher: duplicate CRNs in upstream listing, first record wins")
  }

  for _, section := range tracked {
    results = append(results, models.MatchResult{
      Tracked: section,
      Record:  findRecord(section, listingsByDepartment[section.Department]),
    })
  }

  return results
}

func findRecord(section models.TrackedSection, listings []models.RawSectionRecord) *models.RawSectionRecord {
  crn := section.Key()

  for index := range listings {
    if strings.TrimSpace(listings[index].CRN) == crn {
      return &listings[index]
    }
  }

  return nil
}
