package student

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStudentJSON(t *testing.T) {
	body := `{"_id": "abc", "name": "Bob", "mentor": "Alice", "previous_mentor": "Carol", "batch": "B42", "tags": ["go"]}`

	var s Student
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	require.True(t, s.ID.IsZero())
	require.Equal(t, "Bob", s.Name)
	require.Equal(t, "Alice", s.MentorName())
	require.Nil(t, s.PreviousMentor)
	require.Equal(t, map[string]interface{}{"batch": "B42", "tags": []interface{}{"go"}}, s.Extra)

	out, err := json.Marshal(&s)
	require.NoError(t, err)
	require.JSONEq(t, `{"name": "Bob", "mentor": "Alice", "previous_mentor": null, "batch": "B42", "tags": ["go"]}`, string(out))
}

func TestStudentJSONNullMentor(t *testing.T) {
	var s Student
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Heidi", "mentor": null}`), &s))
	require.Nil(t, s.Mentor)
	require.Equal(t, "", s.MentorName())

	require.Error(t, json.Unmarshal([]byte(`{"name": 42}`), &s))
	require.Error(t, json.Unmarshal([]byte(`["Bob"]`), &s))
}

func TestStudentClone(t *testing.T) {
	mentor := "Alice"
	s := &Student{Name: "Bob", Mentor: &mentor, Extra: map[string]interface{}{"batch": "B42"}}

	c := s.Clone()
	*c.Mentor = "Carol"
	c.Extra["batch"] = "B43"

	require.Equal(t, "Alice", s.MentorName())
	require.Equal(t, "B42", s.Extra["batch"])
}

func TestStudentBSONRoundTrip(t *testing.T) {
	prev := "Carol"
	s := &Student{
		ID:             primitive.NewObjectID(),
		Name:           "Dave",
		PreviousMentor: &prev,
		Extra: map[string]interface{}{
			"batch":   "B42",
			"profile": map[string]interface{}{"github": "dave", "tags": []interface{}{"go", "mongo"}},
		},
	}

	data, err := bson.Marshal(s)
	require.NoError(t, err)

	raw := bson.Raw(data)
	require.Equal(t, bsontype.Null, raw.Lookup(mentorKey).Type)
	require.Equal(t, "Carol", raw.Lookup(previousMentorKey).StringValue())
	require.Equal(t, "dave", raw.Lookup("profile", "github").StringValue())

	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(data))
	require.NoError(t, err)
	dec.DefaultDocumentM()

	got := new(Student)
	require.NoError(t, dec.Decode(got))
	require.Equal(t, s.ID, got.ID)
	require.Equal(t, "Dave", got.Name)
	require.Nil(t, got.Mentor)
	require.Equal(t, "Carol", *got.PreviousMentor)
	require.Equal(t, "B42", got.Extra["batch"])
	require.Equal(t, primitive.M{"github": "dave", "tags": primitive.A{"go", "mongo"}}, got.Extra["profile"])
	require.Len(t, got.Extra, 2)
}
