package mentor

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
	// CollectionName is the mongodb collection that holds mentors.
	CollectionName = "Mentor"

	idKey               = "_id"
	nameKey             = "name"
	studentsTeachingKey = "students_teaching"

	// Actions
	actionSet  = "$set"
	actionPush = "$push"
	actionPull = "$pull"
)

type Mentor struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	StudentsTeaching []string           `bson:"students_teaching"`
	// Extra holds every other field of the document.
	Extra map[string]interface{} `bson:",inline"`
}

// Teaches reports whether studentName is in the mentor's list.
func (m *Mentor) Teaches(studentName string) bool {
	for _, s := range m.StudentsTeaching {
		if s == studentName {
			return true
		}
	}
	return false
}

// MarshalJSON flattens Extra into the top level object. A nil list is
// written as [].
func (m *Mentor) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	if !m.ID.IsZero() {
		out[idKey] = m.ID
	}
	out[nameKey] = m.Name
	students := m.StudentsTeaching
	if students == nil {
		students = []string{}
	}
	out[studentsTeachingKey] = students
	return json.Marshal(out)
}

// UnmarshalJSON reads the name and keeps unknown fields in Extra. A client
// cannot set _id or students_teaching.
func (m *Mentor) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*m = Mentor{}
	if raw, ok := fields[nameKey]; ok {
		if err := json.Unmarshal(raw, &m.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}

	for k, raw := range fields {
		switch k {
		case idKey, nameKey, studentsTeachingKey:
			continue
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		if m.Extra == nil {
			m.Extra = make(map[string]interface{})
		}
		m.Extra[k] = v
	}

	return nil
}

// Clone returns a copy of m that shares no slices or maps with it.
func (m *Mentor) Clone() *Mentor {
	c := *m
	if m.StudentsTeaching != nil {
		c.StudentsTeaching = append([]string{}, m.StudentsTeaching...)
	}
	if m.Extra != nil {
		c.Extra = make(map[string]interface{}, len(m.Extra))
		for k, v := range m.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// MentorRepository implements Repository.
type MentorRepository struct {
	mentorCollection *mongo.Collection
}

// NewRepository creates a new instance of *MentorRepository.
func NewRepository(ctx context.Context, database *mongo.Database) (*MentorRepository, error) {
	mentorCollectionIndex := mongo.IndexModel{
		Keys: bson.D{{
			Key:   nameKey,
			Value: 1,
		}},
		Options: options.Index().SetUnique(true),
	}

	// Create a unique index on the mentor collection.
	mentorCollection := database.Collection(CollectionName)
	_, err := mentorCollection.Indexes().CreateOne(ctx, mentorCollectionIndex)
	if err != nil {
		return nil, fmt.Errorf("mentorCollection.Indexes().CreateOne error: %w", err)
	}

	return &MentorRepository{
		mentorCollection: mentorCollection,
	}, nil
}

// Check that *MentorRepository implements Repository.
var _ Repository = (*MentorRepository)(nil)

// Create implements Repository.
func (mr *MentorRepository) Create(ctx context.Context, mentor *Mentor) error {
	if mentor.Name == "" {
		return fmt.Errorf("%w: missing mentor name", db.ErrorInvalidRequest)
	}

	if mentor.ID.IsZero() {
		mentor.ID = primitive.NewObjectID()
	}
	if mentor.StudentsTeaching == nil {
		mentor.StudentsTeaching = []string{}
	}

	_, err := mr.mentorCollection.InsertOne(ctx, mentor)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: mentor name %s already exists", db.ErrorInvalidRequest, mentor.Name)
		}
		return fmt.Errorf("mentorCollection.InsertOne error: %w", err)
	}

	return nil
}

// Mentor implements Repository.
func (mr *MentorRepository) Mentor(ctx context.Context, name string) (*Mentor, error) {
	var mentor *Mentor
	err := mr.mentorCollection.FindOne(ctx, bson.M{nameKey: name}).Decode(&mentor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: no mentor named %s", db.ErrorNotFound, name)
		}
		return nil, fmt.Errorf("mentorCollection.FindOne error: %w", err)
	}

	return mentor, nil
}

// Mentors implements Repository.
func (mr *MentorRepository) Mentors(ctx context.Context) ([]*Mentor, error) {
	cur, err := mr.mentorCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mentorCollection.Find error: %w", err)
	}

	mentors := make([]*Mentor, 0)
	return mentors, cur.All(ctx, &mentors)
}

// PushStudents implements Repository.
func (mr *MentorRepository) PushStudents(ctx context.Context, mentorName string, studentNames ...string) error {
	if len(studentNames) == 0 {
		return nil
	}

	res, err := mr.mentorCollection.UpdateOne(ctx, bson.M{nameKey: mentorName}, pushStudentsUpdate(studentNames), options.Update().SetUpsert(false))
	if err != nil {
		return fmt.Errorf("mentorCollection.UpdateOne error: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: no mentor named %s", db.ErrorNotFound, mentorName)
	}

	return nil
}

// PullStudents implements Repository.
func (mr *MentorRepository) PullStudents(ctx context.Context, studentNames ...string) (int64, error) {
	if len(studentNames) == 0 {
		return 0, nil
	}

	filter, update := pullStudentsUpdate(studentNames)
	res, err := mr.mentorCollection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("mentorCollection.UpdateMany error: %w", err)
	}

	return res.ModifiedCount, nil
}

// pushStudentsUpdate appends names to students_teaching in order.
func pushStudentsUpdate(names []string) bson.M {
	return bson.M{actionPush: bson.M{
		studentsTeachingKey: bson.M{"$each": names},
	}}
}

// pullStudentsUpdate matches every mentor teaching any of names and removes
// them from its list.
func pullStudentsUpdate(names []string) (filter, update bson.M) {
	in := bson.M{"$in": names}
	return bson.M{studentsTeachingKey: in}, bson.M{actionPull: bson.M{studentsTeachingKey: in}}
}

// ClearStudents implements Repository.
func (mr *MentorRepository) ClearStudents(ctx context.Context, mentorName string) error {
	update := bson.M{actionSet: bson.M{studentsTeachingKey: []string{}}}
	res, err := mr.mentorCollection.UpdateOne(ctx, bson.M{nameKey: mentorName}, update, options.Update().SetUpsert(false))
	if err != nil {
		return fmt.Errorf("mentorCollection.UpdateOne error: %w", err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: no mentor named %s", db.ErrorNotFound, mentorName)
	}

	return nil
}

// DeleteAll implements Repository.
func (mr *MentorRepository) DeleteAll(ctx context.Context) error {
	_, err := mr.mentorCollection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("mentorCollection.DeleteMany error: %w", err)
	}
	return nil
}

// InsertMany implements Repository.
func (mr *MentorRepository) InsertMany(ctx context.Context, mentors []*Mentor) error {
	if len(mentors) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(mentors))
	for _, m := range mentors {
		if m.ID.IsZero() {
			m.ID = primitive.NewObjectID()
		}
		if m.StudentsTeaching == nil {
			m.StudentsTeaching = []string{}
		}
		docs = append(docs, m)
	}

	_, err := mr.mentorCollection.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate mentor names", db.ErrorInvalidRequest)
		}
		return fmt.Errorf("mentorCollection.InsertMany error: %w", err)
	}

	return nil
}
