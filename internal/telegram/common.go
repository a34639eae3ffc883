package telegram

import (
  "fmt"
  "strings"
  "time"

  "github.com/seatradar/seatradar/internal/models"
  "github.com/spf13/cast"
)

func parseAddCommand(text string) (models.TrackedSection, error) {
  fields := strings.Fields(text)

  if len(fields) != 3 {
    return models.TrackedSection{}, fmt.Errorf("expected: add COURSE-SECTION CRN")
  }

  courseCode, sectionCode, err := models.ParseSectionLabel(fields[1])
  if err != nil {
    return models.TrackedSection{}, err
  }

  crn := strings.TrimSpace(fields[2])

  if _, err = cast.ToInt64E(crn); err != nil {
    return models.TrackedSection{}, fmt.Errorf("CRN must be numeric, got: %q", crn)
  }

  return models.TrackedSection{
    Department: models.DepartmentOf(courseCode),
    CourseCode: courseCode,
    Section:    sectionCode,
    CRN:        crn,
  }, nil
}

func parseRemoveCommand(text string) (courseCode, sectionCode string, err error) {
  fields := strings.Fields(text)

  if len(fields) != 2 {
    return "", "", fmt.Errorf("expected: remove COURSE-SECTION")
  }

  return models.ParseSectionLabel(fields[1])
}

func (b *Bot) statusText(verbose bool) string {
  sections := b.deps.Registry.Snapshot()
  if len(sections) == 0 {
    return "No sections tracked. Use: add EE207-02 22716"
  }

  states := b.deps.Tracker.Snapshot()

  lines := make([]string, 0, len(sections)+2)
  lines = append(lines, fmt.Sprintf("Tracked sections (term %s):", b.config.Term))

  for _, section := range sections {
    lines = append(lines, sectionLine(section, states, verbose))
  }

  if verbose {
    lines = append(lines, "", fmt.Sprintf("Upstream circuit: %s", b.deps.Breaker.State()))
  }

  return strings.Join(lines, "\n")
}

func sectionLine(section models.TrackedSection, states map[string]models.SectionState, verbose bool) string {
  state, ok := states[section.Key()]

  if !ok {
    if verbose {
      return fmt.Sprintf("%s (CRN %s): no observation yet", section.Label(), section.CRN)
    }
    return fmt.Sprintf("%s: -", section.Label())
  }

  display := state.LastSeatsDisplay

  // Unverified readings are visible but tagged, never trusted.
  if !state.LastVerified {
    display = "~" + display
  }

  if !verbose {
    return fmt.Sprintf("%s: %s", section.Label(), display)
  }

  age := time.Since(state.LastObservedAt).Round(time.Second)

  return fmt.Sprintf("%s (CRN %s): seats %s, seen %s ago",
    section.Label(), section.CRN, display, age)
}
