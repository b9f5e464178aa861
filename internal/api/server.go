package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"celemeter/internal/export"
	"celemeter/internal/metrics"
	"celemeter/internal/models"
	"celemeter/internal/parser"
	"celemeter/internal/trajectory"
)

// Server hosts the map shell: it accepts a dropped log file and returns
// the trajectory for rendering.
type Server struct {
	parser    *parser.Parser
	metrics   *metrics.Collector
	maxUpload int64
	router    *mux.Router
}

// Options configures a Server
type Options struct {
	Mode           parser.RecordMode
	MaxUploadBytes int64
	Metrics        *metrics.Collector // nil disables /metrics
	WebDir         string             // empty disables the static shell
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		parser:    parser.NewParser(opts.Mode),
		metrics:   opts.Metrics,
		maxUpload: opts.MaxUploadBytes,
		router:    mux.NewRouter(),
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 32 << 20
	}
	s.setupRoutes(opts.WebDir)
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes(webDir string) {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.Use(jsonMiddleware)
	v1.HandleFunc("/trajectory", s.handleTrajectory).Methods("POST")
	v1.HandleFunc("/export/{format}", s.handleExport).Methods("POST")

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	if webDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(webDir)))
	}
}

// Router returns the configured router
func (s *Server) Router() *mux.Router {
	return s.router
}

type ctxKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id assigned to r by the middleware
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

// Middleware
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s %s %v", RequestID(r), r.Method, r.URL.Path, time.Since(start))
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Response helpers
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *meta       `json:"meta,omitempty"`
}

type meta struct {
	Stats   *parser.Stats `json:"stats,omitempty"`
	Mode    string        `json:"mode,omitempty"`
	QueryMs int64         `json:"query_ms"`
}

// upload is the payload returned for a parsed file
type upload struct {
	Filename   string             `json:"filename,omitempty"`
	Message    string             `json:"message"`
	Trajectory *models.Trajectory `json:"trajectory"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}, m *meta) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data, Meta: m})
}

func respondError(w http.ResponseWriter, status int, message string, m *meta) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message, Meta: m})
}

// Handlers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, nil)
}

func (s *Server) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	filename, tr, m, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, upload{
		Filename:   filename,
		Message:    fmt.Sprintf("File uploaded: %s", filename),
		Trajectory: tr,
	}, m)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(mux.Vars(r)["format"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	_, tr, _, ok := s.parseUpload(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if err := export.Write(w, tr, format); err != nil {
		log.Printf("[%s] export %s: %v", RequestID(r), format, err)
	}
}

// parseUpload reads the dropped file and runs the pipeline. On failure it
// writes the error response and returns ok=false.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (string, *models.Trajectory, *meta, bool) {
	start := time.Now()

	filename, content, err := s.readUpload(w, r)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveParse(parser.Stats{}, 0, time.Since(start), err)
		}
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return "", nil, nil, false
	}

	tr, stats, err := s.parser.Parse(content)
	m := &meta{Stats: &stats, Mode: s.parser.Mode().String(), QueryMs: time.Since(start).Milliseconds()}

	segments := 0
	if tr != nil {
		segments = len(tr.Segments)
		tr.ID = RequestID(r)
	}
	if s.metrics != nil {
		s.metrics.ObserveParse(stats, segments, time.Since(start), err)
	}

	if errors.Is(err, trajectory.ErrEmptyTrajectory) {
		log.Printf("[%s] %s: %v (%d matched, %d rejected)", RequestID(r), filename, err, stats.Matched, stats.Rejected)
		respondError(w, http.StatusUnprocessableEntity, trajectory.ErrEmptyTrajectory.Error(), m)
		return "", nil, nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error(), m)
		return "", nil, nil, false
	}

	return filename, tr, m, true
}

// readUpload accepts either a multipart "file" field or a raw body
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	var (
		filename string
		src      io.Reader = r.Body
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", "", fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()
		filename, src = header.Filename, file
	} else {
		filename = r.URL.Query().Get("filename")
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", "", fmt.Errorf("failed to read upload: %w", err)
	}
	return filename, string(data), nil
}
