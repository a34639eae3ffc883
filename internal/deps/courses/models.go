package courses

import (
  "fmt"

  "github.com/samber/lo"
  "github.com/seatradar/seatradar/internal/models"
  "github.com/seatradar/seatradar/pkg/stringer"
  "github.com/tidwall/gjson"
)

// Field names vary across upstream payload versions. Each record field
// is read from an ordered candidate list, first present wins.
var (
  tokenFields      = []string{"token", "session_token", "access_token"}
  listFields       = []string{"data", "courses"}
  crnFields        = []string{"crn", "CRN", "courseReferenceNumber", "course_reference_number"}
  courseFields     = []string{"course", "courseCode", "course_code", "subjectCourse"}
  sectionFields    = []string{"section", "sectionNumber", "sequenceNumber"}
  titleFields      = []string{"title", "courseTitle", "course_title"}
  instructorFields = []string{"instructor", "instructorName", "faculty"}
  scheduleFields   = []string{"schedule", "time", "meetingTime"}
  locationFields   = []string{"location", "room", "building"}
  availableFields  = []string{"available", "seats", "seatsAvailable", "available_seats", "remaining"}
  capacityFields   = []string{"capacity", "total", "maxEnrollment", "total_seats"}
  enrolledFields   = []string{"enrolled", "enrollment", "actual"}
)

// normalizeListings turns an upstream payload into section records.
// The payload is either a bare array of records or an object carrying
// the array under a data/courses field; the ambiguity stops here.
func normalizeListings(body []byte) ([]models.RawSectionRecord, error) {
  if !gjson.ValidBytes(body) {
    return nil, fmt.Errorf("%w: invalid json", ErrMalformedPayload)
  }

  root := gjson.ParseBytes(body)

  var entries []gjson.Result

  switch {
  case root.IsArray():
    entries = root.Array()

  case root.IsObject():
    found := false

    for _, field := range listFields {
      if list := root.Get(field); list.IsArray() {
        entries = list.Array()
        found = true
        break
      }
    }

    if !found {
      return nil, fmt.Errorf("%w: object without listing array", ErrMalformedPayload)
    }

  default:
    return nil, fmt.Errorf("%w: neither array nor object", ErrMalformedPayload)
  }

  records := make([]models.RawSectionRecord, 0, len(entries))

  for _, entry := range entries {
    if !entry.IsObject() {
      return nil, fmt.Errorf("%w: listing entry is not an object", ErrMalformedPayload)
    }
    records = append(records, makeRecord(entry))
  }

  return records, nil
}

func makeRecord(entry gjson.Result) models.RawSectionRecord {
  return models.RawSectionRecord{
    CRN:        findString(entry, crnFields),
    CourseCode: findString(entry, courseFields),
    Section:    findString(entry, sectionFields),
    Title:      findString(entry, titleFields),
    Instructor: findString(entry, instructorFields),
    Schedule:   findString(entry, scheduleFields),
    Location:   findString(entry, locationFields),
    Available:  findInt(entry, availableFields),
    Capacity:   findInt(entry, capacityFields),
    Enrolled:   findInt(entry, enrolledFields),
  }
}

func findToken(body []byte) string {
  if !gjson.ValidBytes(body) {
    return ""
  }
  return findString(gjson.ParseBytes(body), tokenFields)
}

func findString(entry gjson.Result, keys []string) string {
  for _, key := range keys {
    value := entry.Get(key)

    if !value.Exists() || value.Type == gjson.Null {
      continue
    }

    if s := stringer.Strip(value.String()); s != "" {
      return s
    }
  }

  return ""
}

// findInt reads the first present numeric candidate. Absent and
// non-numeric values stay nil so missing data is never read as zero.
func findInt(entry gjson.Result, keys []string) *int64 {
  for _, key := range keys {
    value := entry.Get(key)

    switch value.Type {
    case gjson.Number:
      return lo.ToPtr(value.Int())

    case gjson.String:
      if parsed, ok := stringer.ParseIntStr(value.String()); ok {
        return lo.ToPtr(parsed)
      }
    }
  }

  return nil
}
