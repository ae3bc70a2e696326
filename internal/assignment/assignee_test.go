package assignment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ukane-philemon/mentorship/internal/db"
)

func TestParseRole(t *testing.T) {
	for input, want := range map[string]Role{
		"student":  RoleStudent,
		"Student":  RoleStudent,
		" MENTOR ": RoleMentor,
		"mentor":   RoleMentor,
	} {
		got, err := ParseRole(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "coach", "students"} {
		_, err := ParseRole(input)
		require.ErrorIs(t, err, db.ErrorInvalidRequest, input)
		require.Contains(t, err.Error(), "Incorrect ROLE Specified")
	}
}

func TestAssigneeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Assignee
		wantErr bool
	}{
		{name: "null", body: `{"assignee": null}`, want: None()},
		{name: "absent", body: `{}`, want: None()},
		{name: "string", body: `{"assignee": "Alice"}`, want: Single("Alice")},
		{name: "empty list", body: `{"assignee": []}`, want: Many()},
		{name: "list", body: `{"assignee": ["Bob", "Dave"]}`, want: Many("Bob", "Dave")},
		{name: "object", body: `{"assignee": {"name": "Alice"}}`, wantErr: true},
		{name: "number", body: `{"assignee": 42}`, wantErr: true},
		{name: "bool", body: `{"assignee": true}`, wantErr: true},
		{name: "mixed list", body: `{"assignee": ["Bob", 1]}`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var req struct {
				Assignee Assignee `json:"assignee"`
			}
			err := json.Unmarshal([]byte(test.body), &req)
			if test.wantErr {
				require.ErrorIs(t, err, db.ErrorInvalidRequest)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want.Kind, req.Assignee.Kind)
			require.Equal(t, test.want.Name, req.Assignee.Name)
			require.ElementsMatch(t, test.want.Names, req.Assignee.Names)
		})
	}
}

func TestAssigneeMarshal(t *testing.T) {
	for want, a := range map[string]Assignee{
		`null`:           None(),
		`"Alice"`:        Single("Alice"),
		`[]`:             Many(),
		`["Bob","Dave"]`: Many("Bob", "Dave"),
	} {
		got, err := json.Marshal(a)
		require.NoError(t, err)
		require.JSONEq(t, want, string(got))
	}
}

func TestDecodeAssignee(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		raw     string
		want    AssigneeKind
		wantErr error
	}{
		{name: "missing", role: RoleStudent, raw: ``, want: AssigneeNone},
		{name: "student null", role: RoleStudent, raw: `null`, want: AssigneeNone},
		{name: "student name", role: RoleStudent, raw: `"Alice"`, want: AssigneeSingle},
		{name: "student list", role: RoleStudent, raw: `["Alice"]`, wantErr: ErrStudentAssignee},
		{name: "student object", role: RoleStudent, raw: `{"name": "Alice"}`, wantErr: ErrStudentAssignee},
		{name: "student number", role: RoleStudent, raw: `42`, wantErr: ErrStudentAssigneeName},
		{name: "student bool", role: RoleStudent, raw: ` true`, wantErr: ErrStudentAssigneeName},
		{name: "mentor list", role: RoleMentor, raw: `["Bob"]`, want: AssigneeMany},
		{name: "mentor number", role: RoleMentor, raw: `42`, wantErr: db.ErrorInvalidRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a, err := DecodeAssignee(test.role, json.RawMessage(test.raw))
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				require.ErrorIs(t, err, db.ErrorInvalidRequest)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, a.Kind)
		})
	}
}
