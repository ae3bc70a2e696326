package student

import "context"

type Repository interface {
	// Create inserts a new student. Returns db.ErrorInvalidRequest if the
	// name is missing or already taken.
	Create(ctx context.Context, student *Student) error
	// Student returns the student with the provided name. Returns
	// db.ErrorNotFound if there is none.
	Student(ctx context.Context, name string) (*Student, error)
	// Students returns every student.
	Students(ctx context.Context) ([]*Student, error)
	// StudentsNamed returns the students whose names are in names. Missing
	// names are skipped.
	StudentsNamed(ctx context.Context, names []string) ([]*Student, error)
	// SetMentor overwrites the mentor and previous_mentor fields of the
	// student with the provided name. Returns db.ErrorNotFound if there is no
	// such student.
	SetMentor(ctx context.Context, name string, mentor, previousMentor *string) error
	// ReleaseFromMentor sets previous_mentor to mentorName and clears mentor
	// for every student taught by mentorName. Returns the number of students
	// updated.
	ReleaseFromMentor(ctx context.Context, mentorName string) (int64, error)
	// DeleteAll removes every student.
	DeleteAll(ctx context.Context) error
	// InsertMany inserts students in bulk.
	InsertMany(ctx context.Context, students []*Student) error
}
