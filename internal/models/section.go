package models

import (
  "fmt"
  "strings"
)

// TrackedSection identifies one course section to watch. CRN is the
// authoritative match key; course code and section are supplementary
// because upstream payloads do not expose them consistently.
type TrackedSection struct {
  Department string `bson:"department" json:"department"`
  CourseCode string `bson:"course_code" json:"course_code"`
  Section    string `bson:"section" json:"section"`
  CRN        string `bson:"crn" json:"crn"`
}

func (s TrackedSection) Label() string {
  return fmt.Sprintf("%s-%s", s.CourseCode, s.Section)
}

func (s TrackedSection) Key() string {
  return strings.TrimSpace(s.CRN)
}

// ParseSectionLabel splits a COURSE-SECTION label like "EE207-02".
func ParseSectionLabel(label string) (courseCode, section string, err error) {
  label = strings.TrimSpace(label)

  idx := strings.LastIndex(label, "-")
  if idx <= 0 || idx == len(label)-1 {
    return "", "", fmt.Errorf("expected COURSE-SECTION label, got: %q", label)
  }

  return strings.ToUpper(label[:idx]), label[idx+1:], nil
}

// DepartmentOf derives the department code from a course code,
// e.g. "EE207" -> "EE", "ENGL214" -> "ENGL".
func DepartmentOf(courseCode string) string {
  for idx, r := range courseCode {
    if r >= '0' && r <= '9' {
      return courseCode[:idx]
    }
  }
  return courseCode
}
