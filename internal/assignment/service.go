// Package assignment keeps the student and mentor collections consistent:
// a student's mentor field and the mentors' students_teaching lists are
// always inverses of each other once an operation returns.
package assignment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ukane-philemon/mentorship/internal/db"
	"github.com/ukane-philemon/mentorship/internal/events"
	"github.com/ukane-philemon/mentorship/internal/mentor"
	"github.com/ukane-philemon/mentorship/internal/metrics"
	"github.com/ukane-philemon/mentorship/internal/seed"
	"github.com/ukane-philemon/mentorship/internal/student"
)

// Result messages.
const (
	MessageStudentMentorRemoved  = "No Mentor Assigned / Mentor Removed for a Student"
	MessageStudentMentorAssigned = "Mentor assigned/reassigned to Student"
	MessageMentorStudentsCleared = "No Students / All Students removed for the Mentor"
	MessageMentorManyAssigned    = "Many Students are assigned to a Mentor"
	MessageMentorOneAssigned     = "Student assigned/reassigned to Mentor"
)

// ErrStudentAssignee is returned when a student is assigned a list of mentors.
var ErrStudentAssignee = fmt.Errorf("%w: 'assignee' should not be an object or array for role = 'student'", db.ErrorInvalidRequest)

// ErrStudentAssigneeName is returned when a student is assigned a scalar that
// is not a mentor name, e.g. a number.
var ErrStudentAssigneeName = fmt.Errorf("%w: 'assignee' should be null or a mentor name for role = 'student'", db.ErrorInvalidRequest)

// Result reports what an assignment did.
type Result struct {
	Role     Role
	Name     string
	Assignee Assignee
	Message  string
	// Moved is the number of students whose mentor field changed.
	Moved int
}

// SeedSource provides the dataset used by Reset.
type SeedSource interface {
	Dataset() (*seed.Dataset, error)
}

// Service is the assignment service. It is safe for concurrent use as long
// as its repositories and transactor are.
type Service struct {
	students  student.Repository
	mentors   mentor.Repository
	tx        db.Transactor
	seed      SeedSource
	metrics   metrics.Collector
	publisher events.Publisher
	log       *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics sets the metrics collector. Defaults to a no-op collector.
func WithMetrics(c metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithPublisher sets the event publisher. Defaults to a no-op publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSeed sets the dataset source used by Reset. Defaults to the bundled
// fixtures.
func WithSeed(src SeedSource) Option {
	return func(s *Service) { s.seed = src }
}

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a new *Service.
func NewService(students student.Repository, mentors mentor.Repository, tx db.Transactor, opts ...Option) *Service {
	s := &Service{
		students:  students,
		mentors:   mentors,
		tx:        tx,
		seed:      seed.Source{},
		metrics:   metrics.NewNop(),
		publisher: events.NopPublisher{},
		log:       log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign changes the student/mentor relationship of the student or mentor
// identified by role and name. Caller errors wrap db.ErrorInvalidRequest or
// db.ErrorNotFound; nothing is written when an error is returned.
func (s *Service) Assign(ctx context.Context, role Role, name string, assignee Assignee) (*Result, error) {
	start := time.Now()
	res, err := s.assign(ctx, role, name, assignee)
	roleLabel := string(role)
	if role != RoleStudent && role != RoleMentor {
		roleLabel = ""
	}
	s.metrics.RecordAssignment(roleLabel, assignee.Kind.String(), outcome(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordStudentsMoved(res.Moved)

	ev := events.New(events.TypeAssign)
	ev.Role, ev.Name, ev.Assignee, ev.Message = string(role), name, assignee, res.Message
	s.publish(ctx, ev)

	return res, nil
}

func (s *Service) assign(ctx context.Context, role Role, name string, assignee Assignee) (*Result, error) {
	if role != RoleStudent && role != RoleMentor {
		return nil, fmt.Errorf("%w: Incorrect ROLE Specified", db.ErrorInvalidRequest)
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: missing name", db.ErrorInvalidRequest)
	}

	assignee, err := normalizeAssignee(assignee)
	if err != nil {
		return nil, err
	}

	if role == RoleStudent {
		if assignee.Kind == AssigneeMany {
			return nil, ErrStudentAssignee
		}
		return s.assignStudent(ctx, name, assignee)
	}

	switch assignee.Kind {
	case AssigneeSingle:
		return s.assignMentorOne(ctx, name, assignee)
	case AssigneeMany:
		return s.assignMentorMany(ctx, name, assignee)
	default:
		return s.clearMentor(ctx, name, assignee)
	}
}

// assignStudent sets or clears the mentor of one student.
func (s *Service) assignStudent(ctx context.Context, name string, assignee Assignee) (*Result, error) {
	res := &Result{Role: RoleStudent, Name: name, Assignee: assignee, Message: MessageStudentMentorRemoved}
	var newMentor *string
	if assignee.Kind == AssigneeSingle {
		mentorName := assignee.Name
		newMentor = &mentorName
		res.Message = MessageStudentMentorAssigned
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		res.Moved = 0

		stud, err := s.students.Student(ctx, name)
		if err != nil {
			return err
		}

		if newMentor != nil {
			if _, err := s.mentors.Mentor(ctx, *newMentor); err != nil {
				return err
			}
		}

		// Remove from every mentor, not just the current one, so stale entries
		// left by earlier failures are cleaned up too.
		if _, err := s.mentors.PullStudents(ctx, name); err != nil {
			return err
		}

		if err := s.students.SetMentor(ctx, name, newMentor, stud.Mentor); err != nil {
			return err
		}

		if newMentor != nil {
			if err := s.mentors.PushStudents(ctx, *newMentor, name); err != nil {
				return err
			}
		}

		if stud.MentorName() != assignee.Name {
			res.Moved = 1
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// clearMentor removes every student from mentorName.
func (s *Service) clearMentor(ctx context.Context, mentorName string, assignee Assignee) (*Result, error) {
	res := &Result{Role: RoleMentor, Name: mentorName, Assignee: assignee, Message: MessageMentorStudentsCleared}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		res.Moved = 0

		if err := s.mentors.ClearStudents(ctx, mentorName); err != nil {
			return err
		}

		n, err := s.students.ReleaseFromMentor(ctx, mentorName)
		if err != nil {
			return err
		}

		res.Moved = int(n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// assignMentorMany moves every student in assignee.Names to mentorName.
func (s *Service) assignMentorMany(ctx context.Context, mentorName string, assignee Assignee) (*Result, error) {
	res := &Result{Role: RoleMentor, Name: mentorName, Assignee: assignee, Message: MessageMentorManyAssigned}
	names := assignee.Names
	if len(names) == 0 {
		// Nothing to move, but the mentor must still exist.
		if _, err := s.mentors.Mentor(ctx, mentorName); err != nil {
			return nil, err
		}
		return res, nil
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		res.Moved = 0

		if _, err := s.mentors.Mentor(ctx, mentorName); err != nil {
			return err
		}

		found, err := s.students.StudentsNamed(ctx, names)
		if err != nil {
			return err
		}

		byName := make(map[string]*student.Student, len(found))
		for _, stud := range found {
			byName[stud.Name] = stud
		}
		for _, n := range names {
			if _, ok := byName[n]; !ok {
				return fmt.Errorf("%w: no student named %s", db.ErrorNotFound, n)
			}
		}

		if _, err := s.mentors.PullStudents(ctx, names...); err != nil {
			return err
		}

		if err := s.mentors.PushStudents(ctx, mentorName, names...); err != nil {
			return err
		}

		for _, n := range names {
			stud := byName[n]
			if err := s.students.SetMentor(ctx, n, &mentorName, stud.Mentor); err != nil {
				return err
			}
			if stud.MentorName() != mentorName {
				res.Moved++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// assignMentorOne moves one student to mentorName. The student record is left
// alone when it already points at mentorName.
func (s *Service) assignMentorOne(ctx context.Context, mentorName string, assignee Assignee) (*Result, error) {
	res := &Result{Role: RoleMentor, Name: mentorName, Assignee: assignee, Message: MessageMentorOneAssigned}
	studentName := assignee.Name

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		res.Moved = 0

		if _, err := s.mentors.Mentor(ctx, mentorName); err != nil {
			return err
		}

		stud, err := s.students.Student(ctx, studentName)
		if err != nil {
			return err
		}

		if _, err := s.mentors.PullStudents(ctx, studentName); err != nil {
			return err
		}

		if err := s.mentors.PushStudents(ctx, mentorName, studentName); err != nil {
			return err
		}

		if stud.MentorName() == mentorName {
			return nil
		}

		if err := s.students.SetMentor(ctx, studentName, &mentorName, stud.Mentor); err != nil {
			return err
		}

		res.Moved = 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Students returns every student.
func (s *Service) Students(ctx context.Context) ([]*student.Student, error) {
	return s.students.Students(ctx)
}

// Mentors returns every mentor.
func (s *Service) Mentors(ctx context.Context) ([]*mentor.Mentor, error) {
	return s.mentors.Mentors(ctx)
}

// MentorStudents returns the names of the students taught by mentorName.
func (s *Service) MentorStudents(ctx context.Context, mentorName string) ([]string, error) {
	m, err := s.mentors.Mentor(ctx, mentorName)
	if err != nil {
		return nil, err
	}

	if m.StudentsTeaching == nil {
		return []string{}, nil
	}
	return m.StudentsTeaching, nil
}

// PreviousMentor returns the previous mentor of studentName, nil if there is
// none.
func (s *Service) PreviousMentor(ctx context.Context, studentName string) (*string, error) {
	stud, err := s.students.Student(ctx, studentName)
	if err != nil {
		return nil, err
	}
	return stud.PreviousMentor, nil
}

// CreateMentor inserts a new mentor with an empty students_teaching list.
func (s *Service) CreateMentor(ctx context.Context, m *mentor.Mentor) (*mentor.Mentor, error) {
	start := time.Now()
	err := s.createMentor(ctx, m)
	s.metrics.RecordOperation(events.TypeCreateMentor, outcome(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	ev := events.New(events.TypeCreateMentor)
	ev.Role, ev.Name = string(RoleMentor), m.Name
	s.publish(ctx, ev)

	return m, nil
}

func (s *Service) createMentor(ctx context.Context, m *mentor.Mentor) error {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: missing mentor name", db.ErrorInvalidRequest)
	}

	m.StudentsTeaching = []string{}
	return s.mentors.Create(ctx, m)
}

// CreateStudent inserts a new student. If the student names a mentor, the
// student is also added to that mentor's list. previous_mentor always starts
// empty.
func (s *Service) CreateStudent(ctx context.Context, stud *student.Student) (*student.Student, error) {
	start := time.Now()
	err := s.createStudent(ctx, stud)
	s.metrics.RecordOperation(events.TypeCreateStudent, outcome(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	ev := events.New(events.TypeCreateStudent)
	ev.Role, ev.Name = string(RoleStudent), stud.Name
	if stud.Mentor != nil {
		ev.Assignee = Single(*stud.Mentor)
	}
	s.publish(ctx, ev)

	return stud, nil
}

func (s *Service) createStudent(ctx context.Context, stud *student.Student) error {
	if stud == nil || strings.TrimSpace(stud.Name) == "" {
		return fmt.Errorf("%w: missing student name", db.ErrorInvalidRequest)
	}

	stud.PreviousMentor = nil
	if stud.Mentor != nil && *stud.Mentor == "" {
		stud.Mentor = nil
	}

	if stud.Mentor == nil {
		return s.students.Create(ctx, stud)
	}

	mentorName := *stud.Mentor
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.mentors.Mentor(ctx, mentorName); err != nil {
			return err
		}

		if err := s.students.Create(ctx, stud); err != nil {
			return err
		}

		if _, err := s.mentors.PullStudents(ctx, stud.Name); err != nil {
			return err
		}

		return s.mentors.PushStudents(ctx, mentorName, stud.Name)
	})
}

// Reset deletes every student and mentor and reloads the seed dataset.
func (s *Service) Reset(ctx context.Context) error {
	start := time.Now()
	err := s.reset(ctx)
	s.metrics.RecordOperation(events.TypeReset, outcome(err), time.Since(start).Seconds())
	if err != nil {
		return err
	}

	s.publish(ctx, events.New(events.TypeReset))
	return nil
}

func (s *Service) reset(ctx context.Context) error {
	dataset, err := s.seed.Dataset()
	if err != nil {
		return fmt.Errorf("seed.Dataset error: %w", err)
	}

	// A dataset that breaks the relationship must not replace good data.
	if err := dataset.Check(); err != nil {
		return fmt.Errorf("%w: inconsistent seed data: %v", db.ErrorInvalidRequest, err)
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.students.DeleteAll(ctx); err != nil {
			return err
		}

		if err := s.mentors.DeleteAll(ctx); err != nil {
			return err
		}

		if err := s.students.InsertMany(ctx, dataset.Students); err != nil {
			return err
		}

		return s.mentors.InsertMany(ctx, dataset.Mentors)
	})
}

// publish sends ev without letting a broker problem fail the request.
func (s *Service) publish(ctx context.Context, ev *events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("event publish failed", "type", ev.Type, "id", ev.ID, "err", err)
	}
}

// normalizeAssignee trims names, rejects empty ones and drops duplicates from
// a list while keeping its order.
func normalizeAssignee(a Assignee) (Assignee, error) {
	switch a.Kind {
	case AssigneeNone:
		return None(), nil
	case AssigneeSingle:
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return a, fmt.Errorf("%w: 'assignee' cannot be an empty name", db.ErrorInvalidRequest)
		}
		return Single(name), nil
	case AssigneeMany:
		seen := make(map[string]bool, len(a.Names))
		names := make([]string, 0, len(a.Names))
		for _, n := range a.Names {
			n = strings.TrimSpace(n)
			if n == "" {
				return a, fmt.Errorf("%w: 'assignee' cannot contain an empty name", db.ErrorInvalidRequest)
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			names = append(names, n)
		}
		return Many(names...), nil
	}
	return a, fmt.Errorf("%w: unknown assignee kind %d", db.ErrorInvalidRequest, a.Kind)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case db.IsUserError(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
