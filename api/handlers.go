package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ukane-philemon/mentorship/internal/assignment"
	"github.com/ukane-philemon/mentorship/internal/mentor"
	"github.com/ukane-philemon/mentorship/internal/student"
)

// Response messages.
const (
	msgCreatedMentor            = "Created Mentor successfully"
	msgCreatedStudent           = "Created Student successfully"
	msgCreatedStudentWithMentor = "Created Student successfully and Added student to Mentor list"
	msgReset                    = "RESETTED THE COLLECTION"
)

type actionResponse struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

type createResponse struct {
	Status         string      `json:"status"`
	Message        string      `json:"message"`
	InsertedObject interface{} `json:"insertedObject"`
}

type assignRequest struct {
	Role string `json:"role" validate:"required"`
	Name string `json:"name" validate:"notblank"`
	// Assignee is decoded once the role is known.
	Assignee json.RawMessage `json:"assignee"`
}

type namedRequest struct {
	Name string `json:"name" validate:"notblank,max=256"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleGuide(res http.ResponseWriter, _ *http.Request) {
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write(guideHTML)
}

func (s *Server) handleHealth(res http.ResponseWriter, _ *http.Request) {
	writeJSON(res, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStudents(res http.ResponseWriter, req *http.Request) {
	students, err := s.svc.Students(req.Context())
	if err != nil {
		s.handleError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, students)
}

func (s *Server) handleMentors(res http.ResponseWriter, req *http.Request) {
	mentors, err := s.svc.Mentors(req.Context())
	if err != nil {
		s.handleError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, mentors)
}

func (s *Server) handleCreateMentor(res http.ResponseWriter, req *http.Request) {
	m := new(mentor.Mentor)
	if err := decodeBody(req, m); err != nil {
		s.handleError(res, req, err)
		return
	}

	if err := validate.Struct(&namedRequest{Name: m.Name}); err != nil {
		s.handleError(res, req, err)
		return
	}

	created, err := s.svc.CreateMentor(req.Context(), m)
	if err != nil {
		s.handleError(res, req, err)
		return
	}

	writeJSON(res, http.StatusOK, &createResponse{
		Status:         statusSuccess,
		Message:        msgCreatedMentor,
		InsertedObject: created,
	})
}

func (s *Server) handleCreateStudent(res http.ResponseWriter, req *http.Request) {
	st := new(student.Student)
	if err := decodeBody(req, st); err != nil {
		s.handleError(res, req, err)
		return
	}

	if err := validate.Struct(&namedRequest{Name: st.Name}); err != nil {
		s.handleError(res, req, err)
		return
	}

	created, err := s.svc.CreateStudent(req.Context(), st)
	if err != nil {
		s.handleError(res, req, err)
		return
	}

	msg := msgCreatedStudent
	if created.Mentor != nil {
		msg = msgCreatedStudentWithMentor
	}

	writeJSON(res, http.StatusOK, &createResponse{
		Status:         statusSuccess,
		Message:        msg,
		InsertedObject: created,
	})
}

func (s *Server) handleAssign(res http.ResponseWriter, req *http.Request) {
	var body assignRequest
	if err := decodeBody(req, &body); err != nil {
		s.handleError(res, req, err)
		return
	}

	if err := validate.Struct(&body); err != nil {
		s.handleError(res, req, err)
		return
	}

	role, err := assignment.ParseRole(body.Role)
	if err != nil {
		s.handleError(res, req, err)
		return
	}

	assignee, err := assignment.DecodeAssignee(role, body.Assignee)
	if err != nil {
		s.handleError(res, req, err)
		return
	}

	result, err := s.svc.Assign(req.Context(), role, body.Name, assignee)
	if err != nil {
		s.handleError(res, req, err)
		return
	}

	writeJSON(res, http.StatusOK, &actionResponse{Action: statusSuccess, Message: result.Message})
}

func (s *Server) handleMentorStudents(res http.ResponseWriter, req *http.Request) {
	names, err := s.svc.MentorStudents(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		s.handleError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, map[string][]string{"students_teaching": names})
}

func (s *Server) handlePreviousMentor(res http.ResponseWriter, req *http.Request) {
	prev, err := s.svc.PreviousMentor(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		s.handleError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, map[string]*string{"previous_mentor": prev})
}

func (s *Server) handleReset(res http.ResponseWriter, req *http.Request) {
	if err := s.svc.Reset(req.Context()); err != nil {
		s.handleError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, &actionResponse{Action: statusSuccess, Message: msgReset})
}

func (s *Server) handleLogin(res http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := decodeBody(req, &body); err != nil {
		s.handleError(res, req, err)
		return
	}

	if err := validate.Struct(&body); err != nil {
		s.handleError(res, req, err)
		return
	}

	adminID, err := s.admins.LoginAccount(req.Context(), body.Username, body.Password)
	if err != nil {
		s.handleError(res, req, err)
		return
	}

	token, err := s.jwtManager.GenerateToken(adminID)
	if err != nil {
		s.handleError(res, req, err)
		return
	}

	writeJSON(res, http.StatusOK, map[string]string{"token": token})
}
