// Package api exposes the mentorship service over HTTP.
package api

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"github.com/ukane-philemon/mentorship/internal/assignment"
	"github.com/ukane-philemon/mentorship/internal/jwt"
	"github.com/ukane-philemon/mentorship/internal/mentor"
	"github.com/ukane-philemon/mentorship/internal/student"
)

//go:embed guide.html
var guideHTML []byte

// Service is the assignment service the handlers call into.
type Service interface {
	Assign(ctx context.Context, role assignment.Role, name string, assignee assignment.Assignee) (*assignment.Result, error)
	Students(ctx context.Context) ([]*student.Student, error)
	Mentors(ctx context.Context) ([]*mentor.Mentor, error)
	MentorStudents(ctx context.Context, mentorName string) ([]string, error)
	PreviousMentor(ctx context.Context, studentName string) (*string, error)
	CreateMentor(ctx context.Context, m *mentor.Mentor) (*mentor.Mentor, error)
	CreateStudent(ctx context.Context, s *student.Student) (*student.Student, error)
	Reset(ctx context.Context) error
}

// AdminStore authenticates admins.
type AdminStore interface {
	LoginAccount(ctx context.Context, username, password string) (string, error)
}

// Config configures a Server.
type Config struct {
	Service Service
	// Admins enables admin authentication. When nil every route is open and
	// /admin/login is not mounted.
	Admins     AdminStore
	JWTManager *jwt.Manager
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// RateLimitPerMinute caps requests per client IP. Zero disables it.
	RateLimitPerMinute int
	// CORSOrigins defaults to every origin.
	CORSOrigins []string
	Logger      *log.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	svc        Service
	admins     AdminStore
	jwtManager *jwt.Manager
	metrics    http.Handler
	rateLimit  int
	origins    []string
	log        *log.Logger
}

// NewServer creates a new *Server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("missing service")
	}
	if cfg.Admins != nil && cfg.JWTManager == nil {
		return nil, errors.New("admin authentication requires a jwt manager")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		svc:        cfg.Service,
		admins:     cfg.Admins,
		jwtManager: cfg.JWTManager,
		metrics:    cfg.Metrics,
		rateLimit:  cfg.RateLimitPerMinute,
		origins:    origins,
		log:        logger,
	}, nil
}

func (s *Server) authEnabled() bool {
	return s.admins != nil
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	chiMux := chi.NewMux()
	chiMux.Use(middleware.RequestID)
	chiMux.Use(middleware.RealIP)
	chiMux.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.log.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}),
		NoColor: true,
	}))
	chiMux.Use(middleware.Recoverer)
	if s.rateLimit > 0 {
		chiMux.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}
	if s.authEnabled() {
		chiMux.Use(AuthMiddleware(s.jwtManager))
	}

	chiMux.Get("/", s.handleGuide)
	chiMux.Get("/health", s.handleHealth)
	if s.metrics != nil {
		chiMux.Handle("/metrics", s.metrics)
	}

	chiMux.Get("/students", s.handleStudents)
	chiMux.Get("/mentors", s.handleMentors)
	chiMux.Post("/create/mentor", s.handleCreateMentor)
	chiMux.Post("/create/student", s.handleCreateStudent)
	chiMux.Put("/assign/studentMentor", s.handleAssign)
	chiMux.Get("/show/mentorStudents/{id}", s.handleMentorStudents)
	chiMux.Get("/show/previousMentor/{id}", s.handlePreviousMentor)
	chiMux.With(s.requireAdmin).Delete("/reset", s.handleReset)

	if s.authEnabled() {
		chiMux.Post("/admin/login", s.handleLogin)
	}

	return cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", jwtHeader},
	}).Handler(chiMux)
}
