package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"github.com/ukane-philemon/mentorship/internal/assignment"
	"github.com/ukane-philemon/mentorship/internal/db/inmem"
	"github.com/ukane-philemon/mentorship/internal/jwt"
)

type testServer struct {
	*httptest.Server
	db *inmem.DB
}

func newTestServer(t *testing.T, withAuth bool) *testServer {
	t.Helper()
	ctx := context.Background()

	d := inmem.New()
	svc := assignment.NewService(inmem.NewStudentRepository(d), inmem.NewMentorRepository(d), d,
		assignment.WithLogger(log.New(io.Discard)))
	require.NoError(t, svc.Reset(ctx))

	cfg := Config{
		Service: svc,
		Logger:  log.New(io.Discard),
	}
	if withAuth {
		admins := inmem.NewAdminRepository(d)
		_, err := admins.CreateAccount(ctx, "root", "correct horse")
		require.NoError(t, err)
		jwtManager, err := jwt.NewJWTManager(nil, 0)
		require.NoError(t, err)
		cfg.Admins, cfg.JWTManager = admins, jwtManager
	}

	s, err := NewServer(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, db: d}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func (ts *testServer) list(t *testing.T, path string) []map[string]interface{} {
	t.Helper()

	res, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out []map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func (ts *testServer) teaching(t *testing.T, mentorName string) []interface{} {
	t.Helper()
	status, body := ts.do(t, http.MethodGet, "/show/mentorStudents/"+mentorName, "")
	require.Equal(t, http.StatusOK, status)
	list, ok := body["students_teaching"].([]interface{})
	require.True(t, ok, body)
	return list
}

func TestGuideAndHealth(t *testing.T) {
	ts := newTestServer(t, false)

	res, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, res.Header.Get("Content-Type"), "text/html")
	page, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Contains(t, string(page), "/assign/studentMentor")

	status, body := ts.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])
}

func TestListStudentsAndMentors(t *testing.T) {
	ts := newTestServer(t, false)

	students := ts.list(t, "/students")
	require.Len(t, students, 5)
	require.Equal(t, "Bob", students[0]["name"])
	require.Equal(t, "Alice", students[0]["mentor"])
	require.Equal(t, "B42", students[0]["batch"])
	require.Contains(t, students[0], "_id")

	mentors := ts.list(t, "/mentors")
	require.Len(t, mentors, 4)
	require.Equal(t, "Alice", mentors[0]["name"])
	require.Equal(t, []interface{}{"Bob", "Dave"}, mentors[0]["students_teaching"])
}

func TestCreateMentor(t *testing.T) {
	ts := newTestServer(t, false)

	status, body := ts.do(t, http.MethodPost, "/create/mentor",
		`{"name": "Judy", "expertise": "Security", "students_teaching": ["Bob"]}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Success", body["status"])
	require.Equal(t, msgCreatedMentor, body["message"])

	inserted := body["insertedObject"].(map[string]interface{})
	require.Equal(t, "Judy", inserted["name"])
	require.Equal(t, "Security", inserted["expertise"])
	require.Equal(t, []interface{}{}, inserted["students_teaching"])
	require.Empty(t, ts.teaching(t, "Judy"))

	status, body = ts.do(t, http.MethodPost, "/create/mentor", `{"name": "Judy"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FAILED", body["action"])
	require.Contains(t, body["error"], "already exists")

	status, body = ts.do(t, http.MethodPost, "/create/mentor", `{"name": "  "}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FAILED", body["action"])
	require.Equal(t, "name cannot be blank", body["error"])

	status, body = ts.do(t, http.MethodPost, "/create/mentor", `{"name": `)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FAILED", body["action"])
	require.Contains(t, body["error"], "malformed request body")
}

func TestCreateStudent(t *testing.T) {
	ts := newTestServer(t, false)

	status, body := ts.do(t, http.MethodPost, "/create/student", `{"name": "Judy", "mentor": "Frank", "previous_mentor": "Alice"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Success", body["status"])
	require.Equal(t, msgCreatedStudentWithMentor, body["message"])
	inserted := body["insertedObject"].(map[string]interface{})
	require.Equal(t, "Frank", inserted["mentor"])
	require.Nil(t, inserted["previous_mentor"])
	require.Equal(t, []interface{}{"Judy"}, ts.teaching(t, "Frank"))

	status, body = ts.do(t, http.MethodPost, "/create/student", `{"name": "Mallory", "batch": "B45"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, msgCreatedStudent, body["message"])
	inserted = body["insertedObject"].(map[string]interface{})
	require.Nil(t, inserted["mentor"])
	require.Equal(t, "B45", inserted["batch"])

	status, body = ts.do(t, http.MethodPost, "/create/student", `{"name": "Oscar", "mentor": "Nobody"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FAILED", body["action"])
	require.Contains(t, body["error"], "Nobody")
}

func TestAssign(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "student to mentor", body: `{"role": "student", "name": "Bob", "assignee": "Carol"}`, message: assignment.MessageStudentMentorAssigned},
		{name: "remove student mentor", body: `{"role": "Student", "name": "Erin", "assignee": null}`, message: assignment.MessageStudentMentorRemoved},
		{name: "many students", body: `{"role": "mentor", "name": "Grace", "assignee": ["Erin", "Heidi"]}`, message: assignment.MessageMentorManyAssigned},
		{name: "one student", body: `{"role": "MENTOR", "name": "Frank", "assignee": "Dave"}`, message: assignment.MessageMentorOneAssigned},
		{name: "clear mentor", body: `{"role": "mentor", "name": "Carol"}`, message: assignment.MessageMentorStudentsCleared},
	}
	for _, test := range tests {
		status, body := ts.do(t, http.MethodPut, "/assign/studentMentor", test.body)
		require.Equal(t, http.StatusOK, status, test.name)
		require.Equal(t, "Success", body["action"], test.name)
		require.Equal(t, test.message, body["message"], test.name)
	}

	require.Empty(t, ts.teaching(t, "Alice"))
	require.Empty(t, ts.teaching(t, "Carol"))
	require.Equal(t, []interface{}{"Dave"}, ts.teaching(t, "Frank"))
	require.Equal(t, []interface{}{"Erin", "Heidi"}, ts.teaching(t, "Grace"))

	status, body := ts.do(t, http.MethodGet, "/show/previousMentor/Bob", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Carol", body["previous_mentor"])

	status, body = ts.do(t, http.MethodGet, "/show/previousMentor/Heidi", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "previous_mentor")
	require.Nil(t, body["previous_mentor"])
}

func TestAssignFailures(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name string
		body string
		err  string
	}{
		{name: "student with list", body: `{"role": "student", "name": "Bob", "assignee": ["Carol"]}`, err: "'assignee' should not be an object or array for role = 'student'"},
		{name: "student with object", body: `{"role": "student", "name": "Bob", "assignee": {"name": "Carol"}}`, err: "'assignee' should not be an object or array for role = 'student'"},
		{name: "student with number", body: `{"role": "student", "name": "Bob", "assignee": 7}`, err: "'assignee' should be null or a mentor name for role = 'student'"},
		{name: "bad role", body: `{"role": "coach", "name": "Bob", "assignee": "Carol"}`, err: "Incorrect ROLE Specified"},
		{name: "missing role", body: `{"name": "Bob", "assignee": "Carol"}`, err: "role is a required field"},
		{name: "mentor with object", body: `{"role": "mentor", "name": "Alice", "assignee": {"name": "Bob"}}`, err: "'assignee' should be null, a name or a list of names"},
		{name: "unknown mentor", body: `{"role": "student", "name": "Bob", "assignee": "Nobody"}`, err: "not found: no mentor named Nobody"},
		{name: "malformed", body: `[1, 2]`, err: "malformed request body"},
	}
	for _, test := range tests {
		status, body := ts.do(t, http.MethodPut, "/assign/studentMentor", test.body)
		require.Equal(t, http.StatusOK, status, test.name)
		require.Equal(t, "FAILED", body["action"], test.name)
		require.Contains(t, body["error"], test.err, test.name)
	}

	// Nothing changed.
	require.Equal(t, []interface{}{"Bob", "Dave"}, ts.teaching(t, "Alice"))
	require.Equal(t, []interface{}{"Erin"}, ts.teaching(t, "Carol"))

	status, body := ts.do(t, http.MethodGet, "/show/mentorStudents/Nobody", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FAILED", body["action"])
}

func TestServerError(t *testing.T) {
	ts := newTestServer(t, false)

	ts.db.SetFault(func(op string) error {
		return errors.New("disk on fire")
	})
	defer ts.db.SetFault(nil)

	status, body := ts.do(t, http.MethodPut, "/assign/studentMentor", `{"role": "student", "name": "Bob", "assignee": "Carol"}`)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "FAILED", body["action"])
	require.Equal(t, "unknown server error", body["error"])
}

func TestResetWithoutAuth(t *testing.T) {
	ts := newTestServer(t, false)

	status, _ := ts.do(t, http.MethodPut, "/assign/studentMentor", `{"role": "mentor", "name": "Alice"}`)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, ts.teaching(t, "Alice"))

	status, body := ts.do(t, http.MethodDelete, "/reset", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Success", body["action"])
	require.Equal(t, msgReset, body["message"])
	require.Equal(t, []interface{}{"Bob", "Dave"}, ts.teaching(t, "Alice"))

	status, _ = ts.do(t, http.MethodPost, "/admin/login", `{"username": "root", "password": "correct horse"}`)
	require.Equal(t, http.StatusNotFound, status)
}

func TestResetWithAuth(t *testing.T) {
	ts := newTestServer(t, true)

	status, body := ts.do(t, http.MethodDelete, "/reset", "")
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "not authorized", body["error"])

	status, _ = ts.do(t, http.MethodDelete, "/reset", "", jwtHeader, "not-a-token")
	require.Equal(t, http.StatusForbidden, status)

	status, body = ts.do(t, http.MethodPost, "/admin/login", `{"username": "root", "password": "wrong"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "FAILED", body["action"])
	require.Equal(t, "username or password is incorrect", body["error"])

	status, body = ts.do(t, http.MethodPost, "/admin/login", `{"username": "root"}`)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "password is a required field", body["error"])

	status, body = ts.do(t, http.MethodPost, "/admin/login", `{"username": "root", "password": "correct horse"}`)
	require.Equal(t, http.StatusOK, status)
	token, ok := body["token"].(string)
	require.True(t, ok, body)

	status, body = ts.do(t, http.MethodDelete, "/reset", "", jwtHeader, token)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, msgReset, body["message"])

	// Other routes stay open.
	status, _ = ts.do(t, http.MethodGet, "/show/previousMentor/Dave", "")
	require.Equal(t, http.StatusOK, status)
}

func TestNewServerErrors(t *testing.T) {
	_, err := NewServer(Config{})
	require.Error(t, err)

	d := inmem.New()
	svc := assignment.NewService(inmem.NewStudentRepository(d), inmem.NewMentorRepository(d), d)
	_, err = NewServer(Config{Service: svc, Admins: inmem.NewAdminRepository(d)})
	require.Error(t, err)
}
