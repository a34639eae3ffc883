package models

// RawSectionRecord is one entry from an upstream department listing,
// normalized at the client boundary. Seat fields stay optional: absent
// or non-numeric upstream values become nil, never zero.
type RawSectionRecord struct {
  CRN        string `json:"crn"`
  CourseCode string `json:"course_code"`
  Section    string `json:"section"`
  Title      string `json:"title"`
  Instructor string `json:"instructor"`
  Schedule   string `json:"schedule"`
  Location   string `json:"location"`

  Available *int64 `json:"available"`
  Capacity  *int64 `json:"capacity"`
  Enrolled  *int64 `json:"enrolled"`
}

// MatchResult pairs one tracked section with the listing entry found
// for it this cycle. Record is nil when the section was absent from
// the department listing.
type MatchResult struct {
  Tracked TrackedSection
  Record  *RawSectionRecord
}
