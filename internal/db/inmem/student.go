package inmem

import (
	"context"
	"fmt"

	"github.com/ukane-philemon/mentorship/internal/db"
	"github.com/ukane-philemon/mentorship/internal/student"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentRepository implements student.Repository.
type StudentRepository struct {
	db *DB
}

var _ student.Repository = (*StudentRepository)(nil)

// NewStudentRepository creates a student repository backed by d.
func NewStudentRepository(d *DB) *StudentRepository {
	return &StudentRepository{db: d}
}

// find must be called with mu held.
func (repo *StudentRepository) find(name string) *student.Student {
	for _, s := range repo.db.students {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (repo *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing student name", db.ErrorInvalidRequest)
	}

	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("students.Create"); err != nil {
		return err
	}

	if repo.find(s.Name) != nil {
		return fmt.Errorf("%w: student name %s already exists", db.ErrorInvalidRequest, s.Name)
	}

	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	repo.db.students = append(repo.db.students, s.Clone())
	return nil
}

func (repo *StudentRepository) Student(_ context.Context, name string) (*student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s := repo.find(name)
	if s == nil {
		return nil, fmt.Errorf("%w: no student named %s", db.ErrorNotFound, name)
	}
	return s.Clone(), nil
}

func (repo *StudentRepository) Students(_ context.Context) ([]*student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	students := make([]*student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, s.Clone())
	}
	return students, nil
}

func (repo *StudentRepository) StudentsNamed(_ context.Context, names []string) ([]*student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	students := make([]*student.Student, 0, len(names))
	for _, s := range repo.db.students {
		if wanted[s.Name] {
			students = append(students, s.Clone())
		}
	}
	return students, nil
}

func (repo *StudentRepository) SetMentor(ctx context.Context, name string, mentor, previousMentor *string) error {
	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("students.SetMentor"); err != nil {
		return err
	}

	s := repo.find(name)
	if s == nil {
		return fmt.Errorf("%w: no student named %s", db.ErrorNotFound, name)
	}

	s.Mentor = copyString(mentor)
	s.PreviousMentor = copyString(previousMentor)
	return nil
}

func (repo *StudentRepository) ReleaseFromMentor(ctx context.Context, mentorName string) (int64, error) {
	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("students.ReleaseFromMentor"); err != nil {
		return 0, err
	}

	var n int64
	for _, s := range repo.db.students {
		if s.Mentor != nil && *s.Mentor == mentorName {
			prev := mentorName
			s.PreviousMentor = &prev
			s.Mentor = nil
			n++
		}
	}
	return n, nil
}

func (repo *StudentRepository) DeleteAll(ctx context.Context) error {
	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("students.DeleteAll"); err != nil {
		return err
	}

	repo.db.students = nil
	return nil
}

func (repo *StudentRepository) InsertMany(ctx context.Context, students []*student.Student) error {
	defer repo.db.lockWrite(ctx)()

	if err := repo.db.checkFault("students.InsertMany"); err != nil {
		return err
	}

	for _, s := range students {
		if repo.find(s.Name) != nil {
			return fmt.Errorf("%w: duplicate student names", db.ErrorInvalidRequest)
		}
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		repo.db.students = append(repo.db.students, s.Clone())
	}
	return nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
