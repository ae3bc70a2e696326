package inmem

import (
	"context"
	"fmt"

	"github.com/ukane-philemon/mentorship/internal/db"
	"github.com/ukane-philemon/mentorship/internal/mentor"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MentorRepository implements mentor.Repository.
type MentorRepository struct {
	db *DB
}

var _ mentor.Repository = (*MentorRepository)(nil)

// NewMentorRepository creates a mentor repository backed by d.
func NewMentorRepository(d *DB) *MentorRepository {
	return &MentorRepository{db: d}
}

// find must be called with mu held.
func (repo *MentorRepository) find(name string) *mentor.Mentor {
	for _, m := range repo.db.mentors {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (repo *MentorRepository) Create(ctx context.Context, m *mentor.Mentor) error {
	if m.Name == "" {
		return fmt.Errorf("%w: missing mentor name", db.ErrorInvalidRequest)
	}

	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("mentors.Create"); err != nil {
		return err
	}

	if repo.find(m.Name) != nil {
		return fmt.Errorf("%w: mentor name %s already exists", db.ErrorInvalidRequest, m.Name)
	}

	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.StudentsTeaching == nil {
		m.StudentsTeaching = []string{}
	}
	repo.db.mentors = append(repo.db.mentors, m.Clone())
	return nil
}

func (repo *MentorRepository) Mentor(_ context.Context, name string) (*mentor.Mentor, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	m := repo.find(name)
	if m == nil {
		return nil, fmt.Errorf("%w: no mentor named %s", db.ErrorNotFound, name)
	}
	return m.Clone(), nil
}

func (repo *MentorRepository) Mentors(_ context.Context) ([]*mentor.Mentor, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	mentors := make([]*mentor.Mentor, 0, len(repo.db.mentors))
	for _, m := range repo.db.mentors {
		mentors = append(mentors, m.Clone())
	}
	return mentors, nil
}

func (repo *MentorRepository) PushStudents(ctx context.Context, mentorName string, studentNames ...string) error {
	if len(studentNames) == 0 {
		return nil
	}

	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("mentors.PushStudents"); err != nil {
		return err
	}

	m := repo.find(mentorName)
	if m == nil {
		return fmt.Errorf("%w: no mentor named %s", db.ErrorNotFound, mentorName)
	}

	m.StudentsTeaching = append(m.StudentsTeaching, studentNames...)
	return nil
}

func (repo *MentorRepository) PullStudents(ctx context.Context, studentNames ...string) (int64, error) {
	if len(studentNames) == 0 {
		return 0, nil
	}

	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("mentors.PullStudents"); err != nil {
		return 0, err
	}

	pull := make(map[string]bool, len(studentNames))
	for _, n := range studentNames {
		pull[n] = true
	}

	var modified int64
	for _, m := range repo.db.mentors {
		kept := make([]string, 0, len(m.StudentsTeaching))
		for _, s := range m.StudentsTeaching {
			if !pull[s] {
				kept = append(kept, s)
			}
		}
		if len(kept) != len(m.StudentsTeaching) {
			m.StudentsTeaching = kept
			modified++
		}
	}
	return modified, nil
}

func (repo *MentorRepository) ClearStudents(ctx context.Context, mentorName string) error {
	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("mentors.ClearStudents"); err != nil {
		return err
	}

	m := repo.find(mentorName)
	if m == nil {
		return fmt.Errorf("%w: no mentor named %s", db.ErrorNotFound, mentorName)
	}

	m.StudentsTeaching = []string{}
	return nil
}

func (repo *MentorRepository) DeleteAll(ctx context.Context) error {
	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("mentors.DeleteAll"); err != nil {
		return err
	}

	repo.db.mentors = nil
	return nil
}

func (repo *MentorRepository) InsertMany(ctx context.Context, mentors []*mentor.Mentor) error {
	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("mentors.InsertMany"); err != nil {
		return err
	}

	for _, m := range mentors {
		if repo.find(m.Name) != nil {
			return fmt.Errorf("%w: duplicate mentor names", db.ErrorInvalidRequest)
		}
		if m.ID.IsZero() {
			m.ID = primitive.NewObjectID()
		}
		if m.StudentsTeaching == nil {
			m.StudentsTeaching = []string{}
		}
		repo.db.mentors = append(repo.db.mentors, m.Clone())
	}
	return nil
}
