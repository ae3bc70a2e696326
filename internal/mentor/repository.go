package mentor

import "context"

type Repository interface {
	// Create inserts a new mentor. Returns db.ErrorInvalidRequest if the name
	// is missing or already taken.
	Create(ctx context.Context, mentor *Mentor) error
	// Mentor returns the mentor with the provided name. Returns
	// db.ErrorNotFound if there is none.
	Mentor(ctx context.Context, name string) (*Mentor, error)
	// Mentors returns every mentor.
	Mentors(ctx context.Context) ([]*Mentor, error)
	// PushStudents appends studentNames to the mentor's students_teaching.
	// Returns db.ErrorNotFound if there is no such mentor.
	PushStudents(ctx context.Context, mentorName string, studentNames ...string) error
	// PullStudents removes studentNames from the students_teaching list of
	// every mentor and returns the number of mentors modified.
	PullStudents(ctx context.Context, studentNames ...string) (int64, error)
	// ClearStudents empties the mentor's students_teaching.
	ClearStudents(ctx context.Context, mentorName string) error
	// DeleteAll removes every mentor.
	DeleteAll(ctx context.Context) error
	// InsertMany inserts mentors in bulk.
	InsertMany(ctx context.Context, mentors []*Mentor) error
}
