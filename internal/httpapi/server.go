package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
	"github.com/danielpatrickdp/emotion-geometry/internal/store"
)

// MaxBodyBytes bounds every request body.
const MaxBodyBytes = 1 << 20

// #region request-types
// CreateSessionRequest is the body of POST /v1/sessions. Settings may be omitted.
type CreateSessionRequest struct {
	Settings prompt.TherapySettings `json:"settings"`
}

// ChatRequest is the body of POST /v1/chat. Without a session ID a new
// session is created with Settings.
type ChatRequest struct {
	SessionID string                  `json:"sessionId,omitempty"`
	Settings  *prompt.TherapySettings `json:"settings,omitempty"`
	Stream    bool                    `json:"stream,omitempty"`
	session.TurnInput
}
// #endregion request-types

// #region server
// Server is the JSON-over-HTTP surface of the engine.
type Server struct {
	sessions *session.Manager
	logger   *zap.Logger
	origins  map[string]bool
	mux      *http.ServeMux
}

// NewServer registers every route. allowedOrigins may contain "*".
func NewServer(sessions *session.Manager, logger *zap.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sessions: sessions,
		logger:   logger,
		origins:  make(map[string]bool, len(allowedOrigins)),
		mux:      http.NewServeMux(),
	}
	for _, o := range allowedOrigins {
		s.origins[o] = true
	}

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.HandleFunc("POST /v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("GET /v1/sessions/{id}/assessments", s.handleAssessments)
	s.mux.HandleFunc("POST /v1/sessions/{id}/analyze", s.handleSessionAnalyze)
	s.mux.HandleFunc("POST /v1/chat", s.handleChat)
	s.mux.HandleFunc("GET /v1/schema/{name}", s.handleSchema)
	return s
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.enableCORS(s.logRequests(s.mux))
}
// #endregion server

// #region helpers
func sendJSON(w http.ResponseWriter, v interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, map[string]string{"error": message}, statusCode)
}

// decodeBody reads a JSON body into v. An empty body leaves v at its zero
// value when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return 0, nil
	case errors.Is(err, io.EOF) && allowEmpty:
		return 0, nil
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, errors.New("request body too large")
	default:
		return http.StatusBadRequest, errors.New("invalid JSON body: " + err.Error())
	}
}

// sendSessionError maps session and store errors to HTTP statuses.
func (s *Server) sendSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		sendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrEmptyMessage):
		sendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("request failed", zap.Error(err))
		sendJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
// #endregion helpers
