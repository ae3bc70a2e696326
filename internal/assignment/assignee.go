package assignment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ukane-philemon/mentorship/internal/db"
)

// Role selects which entity the name in an assignment request identifies.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

// ParseRole parses role case-insensitively.
func ParseRole(role string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(role))); r {
	case RoleStudent, RoleMentor:
		return r, nil
	}
	return "", fmt.Errorf("%w: Incorrect ROLE Specified", db.ErrorInvalidRequest)
}

// AssigneeKind is the shape of an assignment target.
type AssigneeKind int

const (
	// AssigneeNone clears the relationship.
	AssigneeNone AssigneeKind = iota
	// AssigneeSingle names one mentor or student.
	AssigneeSingle
	// AssigneeMany names several students.
	AssigneeMany
)

func (k AssigneeKind) String() string {
	switch k {
	case AssigneeNone:
		return "none"
	case AssigneeSingle:
		return "single"
	case AssigneeMany:
		return "many"
	}
	return "unknown"
}

// Assignee is the target of an assignment. The zero value is AssigneeNone.
type Assignee struct {
	Kind  AssigneeKind
	Name  string
	Names []string
}

// None returns an Assignee that clears the relationship.
func None() Assignee {
	return Assignee{Kind: AssigneeNone}
}

// Single returns an Assignee naming one entity.
func Single(name string) Assignee {
	return Assignee{Kind: AssigneeSingle, Name: name}
}

// Many returns an Assignee naming several students.
func Many(names ...string) Assignee {
	return Assignee{Kind: AssigneeMany, Names: names}
}

// UnmarshalJSON accepts null, a string or an array of strings. Anything else
// is an invalid request.
func (a *Assignee) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = None()
		return nil
	case data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("%w: 'assignee' is not a valid name", db.ErrorInvalidRequest)
		}
		*a = Single(name)
		return nil
	case data[0] == '[':
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return fmt.Errorf("%w: 'assignee' must be a list of names", db.ErrorInvalidRequest)
		}
		*a = Many(names...)
		return nil
	}
	return fmt.Errorf("%w: 'assignee' should be null, a name or a list of names", db.ErrorInvalidRequest)
}

// MarshalJSON writes the assignee back in its request form.
func (a Assignee) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AssigneeSingle:
		return json.Marshal(a.Name)
	case AssigneeMany:
		names := a.Names
		if names == nil {
			names = []string{}
		}
		return json.Marshal(names)
	}
	return []byte("null"), nil
}

// DecodeAssignee decodes a raw assignee for role. Missing input is
// AssigneeNone. A student can only be given null or a mentor name.
func DecodeAssignee(role Role, raw json.RawMessage) (Assignee, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return None(), nil
	}

	var a Assignee
	if err := json.Unmarshal(raw, &a); err != nil {
		if role != RoleStudent {
			return a, err
		}
		if raw[0] == '{' || raw[0] == '[' {
			return a, ErrStudentAssignee
		}
		return a, ErrStudentAssigneeName
	}

	if role == RoleStudent && a.Kind == AssigneeMany {
		return a, ErrStudentAssignee
	}
	return a, nil
}
