package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ukane-philemon/mentorship/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// CollectionName is the mongodb collection that holds students.
	CollectionName = "Student"

	idKey             = "_id"
	nameKey           = "name"
	mentorKey         = "mentor"
	previousMentorKey = "previous_mentor"

	actionSet = "$set"
)

type Student struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Mentor         *string            `bson:"mentor"`
	PreviousMentor *string            `bson:"previous_mentor"`
	// Extra holds every other field of the document. It is stored inline and
	// passed through unchanged.
	Extra map[string]interface{} `bson:",inline"`
}

// MentorName returns the student's current mentor or "" if the student has no
// mentor.
func (s *Student) MentorName() string {
	if s.Mentor == nil {
		return ""
	}
	return *s.Mentor
}

// MarshalJSON flattens Extra into the top level object.
func (s *Student) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Extra)+4)
	for k, v := range s.Extra {
		out[k] = v
	}
	if !s.ID.IsZero() {
		out[idKey] = s.ID
	}
	out[nameKey] = s.Name
	out[mentorKey] = s.Mentor
	out[previousMentorKey] = s.PreviousMentor
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps everything else in Extra.
// Neither _id nor previous_mentor can be set by a client.
func (s *Student) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*s = Student{}
	if raw, ok := fields[nameKey]; ok {
		if err := json.Unmarshal(raw, &s.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}
	if raw, ok := fields[mentorKey]; ok {
		if err := json.Unmarshal(raw, &s.Mentor); err != nil {
			return fmt.Errorf("mentor: %w", err)
		}
	}

	for k, raw := range fields {
		switch k {
		case idKey, nameKey, mentorKey, previousMentorKey:
			continue
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		if s.Extra == nil {
			s.Extra = make(map[string]interface{})
		}
		s.Extra[k] = v
	}

	return nil
}

// Clone returns a deep enough copy of s for callers that must not share
// pointers with a store.
func (s *Student) Clone() *Student {
	c := *s
	if s.Mentor != nil {
		m := *s.Mentor
		c.Mentor = &m
	}
	if s.PreviousMentor != nil {
		pm := *s.PreviousMentor
		c.PreviousMentor = &pm
	}
	if s.Extra != nil {
		c.Extra = make(map[string]interface{}, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// StudentRepository implements Repository.
type StudentRepository struct {
	studentCollection *mongo.Collection
}

// NewRepository creates a new instance of *StudentRepository.
func NewRepository(ctx context.Context, database *mongo.Database) (*StudentRepository, error) {
	studentCollectionIndex := mongo.IndexModel{
		Keys: bson.D{{
			Key:   nameKey,
			Value: 1,
		}},
		Options: options.Index().SetUnique(true),
	}

	// Create a unique index on the student collection.
	studentCollection := database.Collection(CollectionName)
	_, err := studentCollection.Indexes().CreateOne(ctx, studentCollectionIndex)
	if err != nil {
		return nil, fmt.Errorf("studentCollection.Indexes().CreateOne error: %w", err)
	}

	return &StudentRepository{
		studentCollection: studentCollection,
	}, nil
}

// Check that *StudentRepository implements Repository.
var _ Repository = (*StudentRepository)(nil)

// Create implements Repository.
func (sr *StudentRepository) Create(ctx context.Context, student *Student) error {
	if student.Name == "" {
		return fmt.Errorf("%w: missing student name", db.ErrorInvalidRequest)
	}

	if student.ID.IsZero() {
		student.ID = primitive.NewObjectID()
	}

	_, err := sr.studentCollection.InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: student name %s already exists", db.ErrorInvalidRequest, student.Name)
		}
		return fmt.Errorf("studentCollection.InsertOne error: %w", err)
	}

	return nil
}

// Student implements Repository.
func (sr *StudentRepository) Student(ctx context.Context, name string) (*Student, error) {
	var student *Student
	err := sr.studentCollection.FindOne(ctx, bson.M{nameKey: name}).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no student named %s", db.ErrorNotFound, name)
		}
		return nil, fmt.Errorf("studentCollection.FindOne error: %w", err)
	}

	return student, nil
}

// Students implements Repository.
func (sr *StudentRepository) Students(ctx context.Context) ([]*Student, error) {
	return sr.find(ctx, bson.M{})
}

// StudentsNamed implements Repository.
func (sr *StudentRepository) StudentsNamed(ctx context.Context, names []string) ([]*Student, error) {
	return sr.find(ctx, bson.M{nameKey: bson.M{"$in": names}})
}

func (sr *StudentRepository) find(ctx context.Context, filter bson.M) ([]*Student, error) {
	cur, err := sr.studentCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("studentCollection.Find error: %w", err)
	}

	students := make([]*Student, 0)
	return students, cur.All(ctx, &students)
}

// SetMentor implements Repository.
func (sr *StudentRepository) SetMentor(ctx context.Context, name string, mentor, previousMentor *string) error {
	update := bson.M{actionSet: bson.M{
		mentorKey:         mentor,
		previousMentorKey: previousMentor,
	}}
	res, err := sr.studentCollection.UpdateOne(ctx, bson.M{nameKey: name}, update, options.Update().SetUpsert(false))
	if err != nil {
		return fmt.Errorf("studentCollection.UpdateOne error: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: no student named %s", db.ErrorNotFound, name)
	}

	return nil
}

// ReleaseFromMentor implements Repository.
func (sr *StudentRepository) ReleaseFromMentor(ctx context.Context, mentorName string) (int64, error) {
	update := bson.M{actionSet: bson.M{
		previousMentorKey: mentorName,
		mentorKey:         nil,
	}}
	res, err := sr.studentCollection.UpdateMany(ctx, bson.M{mentorKey: mentorName}, update)
	if err != nil {
		return 0, fmt.Errorf("studentCollection.UpdateMany error: %w", err)
	}

	return res.ModifiedCount, nil
}

// DeleteAll implements Repository.
func (sr *StudentRepository) DeleteAll(ctx context.Context) error {
	_, err := sr.studentCollection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("studentCollection.DeleteMany error: %w", err)
	}
	return nil
}

// InsertMany implements Repository.
func (sr *StudentRepository) InsertMany(ctx context.Context, students []*Student) error {
	if len(students) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(students))
	for _, s := range students {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		docs = append(docs, s)
	}

	_, err := sr.studentCollection.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate student names", db.ErrorInvalidRequest)
		}
		return fmt.Errorf("studentCollection.InsertMany error: %w", err)
	}

	return nil
}
