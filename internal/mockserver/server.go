package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/studiowebux/studentcrud/internal/types"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Server serves the student collection over HTTP
type Server struct {
	config     Config
	store      *Store
	logger     *zap.Logger
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.RWMutex
}

// NewServer creates a new mock server backed by store
func NewServer(config Config, store *Store, logger *zap.Logger) *Server {
	if config.Addr == "" {
		config.Addr = "localhost:8080"
	}
	config.Resource = strings.Trim(config.Resource, "/")
	if config.Resource == "" {
		config.Resource = DefaultResource
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		config: config,
		store:  store,
		logger: logger,
		logs:   make([]RequestLog, 0),
	}
}

// Handler returns the routes of the collection plus the request log.
// Calls to LogsPath are neither delayed nor logged.
func (s *Server) Handler() http.Handler {
	collection := "/" + s.config.Resource
	record := collection + "/{id}"

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+collection, s.handleList)
	mux.HandleFunc("POST "+collection, s.handleCreate)
	mux.HandleFunc("PUT "+record, s.handleUpdate)
	mux.HandleFunc("DELETE "+record, s.handleDelete)
	mux.HandleFunc("/", s.handleUnknown)

	root := http.NewServeMux()
	root.HandleFunc("GET "+LogsPath, s.handleLogs)
	root.HandleFunc("DELETE "+LogsPath, s.handleClearLogs)
	root.Handle("/", s.withLogging(mux))

	return root
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("mock server error", zap.Error(err))
		}
	}()

	s.logger.Info("mock server started", zap.String("address", s.GetAddress()))
	return nil
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// GetAddress returns the base URL clients should use
func (s *Server) GetAddress() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + s.config.Addr
}

// Resource returns the collection path without slashes
func (s *Server) Resource() string {
	return s.config.Resource
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, generalError(err))
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft types.Draft
	if !decodeBody(w, r, &draft) {
		return
	}

	if err := validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, validationError(verrs))
			return
		}
		writeJSON(w, http.StatusBadRequest, generalError(err))
		return
	}

	created, err := s.store.Create(draft)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, generalError(err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch types.Patch
	if !decodeBody(w, r, &patch) {
		return
	}

	updated, err := s.store.Update(r.PathValue("id"), patch)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, generalError(err))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, generalError(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.Delete(r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, generalError(err))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, generalError(err))
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetLogs())
}

func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.ClearLogs()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, generalError(fmt.Errorf("no route for %s %s", r.Method, r.URL.Path)))
}

// decodeBody reads a JSON body into v and answers 400 when it cannot
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, generalError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, generalError(err))
		return false
	}
	return true
}

// statusRecorder remembers the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging applies the configured delay and records every request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Read request body and restore it for the handler
		bodyBytes, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		if s.config.Delay > 0 {
			select {
			case <-time.After(s.config.Delay):
			case <-r.Context().Done():
				return
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if !s.config.Logging {
			return
		}

		entry := RequestLog{
			Timestamp: start,
			Method:    r.Method,
			Path:      r.URL.Path,
			Body:      string(bodyBytes),
			Status:    rec.status,
			Duration:  time.Since(start),
		}
		s.logRequest(entry)
		s.logger.Info("request",
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Int("status", entry.Status),
			zap.Duration("duration", entry.Duration),
		)
	})
}

// logRequest adds a request to the log
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = append(s.logs, log)

	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}
}

// GetLogs returns all logged requests
func (s *Server) GetLogs() []RequestLog {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	// Return a copy
	logs := make([]RequestLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// ClearLogs clears all logged requests
func (s *Server) ClearLogs() {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logs = make([]RequestLog, 0)
}
