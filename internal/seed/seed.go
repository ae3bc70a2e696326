// Package seed loads the fixed dataset used to reset both collections.
package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ukane-philemon/mentorship/internal/mentor"
	"github.com/ukane-philemon/mentorship/internal/student"
)

// File names of the fixtures, both bundled and in a custom directory.
const (
	StudentFile = "Student.json"
	MentorFile  = "Mentor.json"
)

//go:embed data/*.json
var bundled embed.FS

// Dataset is a full set of students and mentors.
type Dataset struct {
	Students []*student.Student
	Mentors  []*mentor.Mentor
}

// Source reads the dataset from Dir, or from the bundled fixtures when Dir is
// empty. The files are read on every call so edits are picked up without a
// restart.
type Source struct {
	Dir string
}

// Dataset implements assignment.SeedSource.
func (src Source) Dataset() (*Dataset, error) {
	var fsys fs.FS
	if src.Dir == "" {
		sub, err := fs.Sub(bundled, "data")
		if err != nil {
			return nil, fmt.Errorf("fs.Sub error: %w", err)
		}
		fsys = sub
	} else {
		fsys = os.DirFS(src.Dir)
	}
	return Load(fsys)
}

// Load parses StudentFile and MentorFile from fsys.
func Load(fsys fs.FS) (*Dataset, error) {
	studentData, err := fs.ReadFile(fsys, StudentFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", StudentFile, err)
	}

	mentorData, err := fs.ReadFile(fsys, MentorFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", MentorFile, err)
	}

	students, err := parseStudents(studentData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", StudentFile, err)
	}

	mentors, err := parseMentors(mentorData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", MentorFile, err)
	}

	return &Dataset{Students: students, Mentors: mentors}, nil
}

// parseStudents decodes student fixtures. Unlike a create request, fixtures
// may set previous_mentor.
func parseStudents(data []byte) ([]*student.Student, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}

	students := make([]*student.Student, 0, len(docs))
	for i, doc := range docs {
		s := new(student.Student)
		if err := json.Unmarshal(doc, s); err != nil {
			return nil, fmt.Errorf("student %d: %w", i, err)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("student %d: missing name", i)
		}

		var audit struct {
			PreviousMentor *string `json:"previous_mentor"`
		}
		if err := json.Unmarshal(doc, &audit); err != nil {
			return nil, fmt.Errorf("student %d: %w", i, err)
		}
		s.PreviousMentor = audit.PreviousMentor

		students = append(students, s)
	}

	return students, nil
}

func parseMentors(data []byte) ([]*mentor.Mentor, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}

	mentors := make([]*mentor.Mentor, 0, len(docs))
	for i, doc := range docs {
		m := new(mentor.Mentor)
		if err := json.Unmarshal(doc, m); err != nil {
			return nil, fmt.Errorf("mentor %d: %w", i, err)
		}
		if m.Name == "" {
			return nil, fmt.Errorf("mentor %d: missing name", i)
		}

		var list struct {
			StudentsTeaching []string `json:"students_teaching"`
		}
		if err := json.Unmarshal(doc, &list); err != nil {
			return nil, fmt.Errorf("mentor %d: %w", i, err)
		}
		m.StudentsTeaching = list.StudentsTeaching
		if m.StudentsTeaching == nil {
			m.StudentsTeaching = []string{}
		}

		mentors = append(mentors, m)
	}

	return mentors, nil
}

// Check reports every place where the students' mentor fields and the
// mentors' lists disagree.
func (d *Dataset) Check() error {
	owners := make(map[string][]string)
	mentors := make(map[string]*mentor.Mentor, len(d.Mentors))
	for _, m := range d.Mentors {
		mentors[m.Name] = m
		for _, s := range m.StudentsTeaching {
			owners[s] = append(owners[s], m.Name)
		}
	}

	var errs []error
	for _, s := range d.Students {
		listed := owners[s.Name]
		delete(owners, s.Name)
		if s.Mentor == nil {
			if len(listed) > 0 {
				errs = append(errs, fmt.Errorf("student %s has no mentor but is listed by %v", s.Name, listed))
			}
			continue
		}

		m, ok := mentors[*s.Mentor]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("student %s names unknown mentor %s", s.Name, *s.Mentor))
		case len(listed) != 1 || !m.Teaches(s.Name):
			errs = append(errs, fmt.Errorf("student %s has mentor %s but is listed by %v", s.Name, *s.Mentor, listed))
		}
	}

	for name, listed := range owners {
		errs = append(errs, fmt.Errorf("unknown student %s is listed by %v", name, listed))
	}

	return errors.Join(errs...)
}
