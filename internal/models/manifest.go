package models

import "sort"

// Manifest is the persisted layout of the tracked-section list:
// department -> courses -> sections.
type Manifest struct {
  Departments map[string][]ManifestCourse `bson:"departments" json:"departments"`
}

type ManifestCourse struct {
  CourseCode string            `bson:"course_code" json:"course_code"`
  Sections   []ManifestSection `bson:"sections" json:"sections"`
}

type ManifestSection struct {
  Section string `bson:"section" json:"section"`
  CRN     string `bson:"crn" json:"crn"`
}

func (m Manifest) Flatten() []TrackedSection {
  var sections []TrackedSection

  for department, courses := range m.Departments {
    for _, course := range courses {
      for _, section := range course.Sections {
        sections = append(sections, TrackedSection{
          Department: department,
          CourseCode: course.CourseCode,
          Section:    section.Section,
          CRN:        section.CRN,
        })
      }
    }
  }

  sort.Slice(sections, func(i, j int) bool {
    if sections[i].CourseCode != sections[j].CourseCode {
      return sections[i].CourseCode < sections[j].CourseCode
    }
    return sections[i].Section < sections[j].Section
  })

  return sections
}

func MakeManifest(sections []TrackedSection) Manifest {
  manifest := Manifest{
    Departments: make(map[string][]ManifestCourse),
  }

  for _, tracked := range sections {
    courses := manifest.Departments[tracked.Department]

    var course *ManifestCourse

    for idx := range courses {
      if courses[idx].CourseCode == tracked.CourseCode {
        course = &courses[idx]
        break
      }
    }

    if course == nil {
      courses = append(courses, ManifestCourse{
        CourseCode: tracked.CourseCode,
      })
      course = &courses[len(courses)-1]
    }

    course.Sections = append(course.Sections, ManifestSection{
      Section: tracked.Section,
      CRN:     tracked.CRN,
    })

    manifest.Departments[tracked.Department] = courses
  }

  return manifest
}
