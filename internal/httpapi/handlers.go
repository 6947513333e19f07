package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
)

// #region analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if code, err := decodeBody(w, r, &req, true); err != nil {
		sendJSONError(w, err.Error(), code)
		return
	}
	sendJSON(w, s.sessions.Engine().Analyze(req), http.StatusOK)
}
// #endregion analyze

// #region sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	req := CreateSessionRequest{Settings: prompt.DefaultTherapySettings()}
	if code, err := decodeBody(w, r, &req, true); err != nil {
		sendJSONError(w, err.Error(), code)
		return
	}
	sess, err := s.sessions.Create(r.Context(), req.Settings)
	if err != nil {
		s.sendSessionError(w, err)
		return
	}
	sendJSON(w, sess, http.StatusCreated)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sendSessionError(w, err)
		return
	}
	sendJSON(w, sess, http.StatusOK)
}

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.sessions.Load(r.Context(), id); err != nil {
		s.sendSessionError(w, err)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendJSONError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.sessions.Assessments(id, limit)
	if err != nil {
		s.sendSessionError(w, err)
		return
	}
	sendJSON(w, entries, http.StatusOK)
}

func (s *Server) handleSessionAnalyze(w http.ResponseWriter, r *http.Request) {
	var in session.TurnInput
	if code, err := decodeBody(w, r, &in, true); err != nil {
		sendJSONError(w, err.Error(), code)
		return
	}
	res, err := s.sessions.Analyze(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.sendSessionError(w, err)
		return
	}
	sendJSON(w, res, http.StatusOK)
}
// #endregion sessions

// #region chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if code, err := decodeBody(w, r, &req, false); err != nil {
		sendJSONError(w, err.Error(), code)
		return
	}
	if r.URL.Query().Get("stream") == "true" {
		req.Stream = true
	}

	id := req.SessionID
	if id == "" {
		settings := prompt.DefaultTherapySettings()
		if req.Settings != nil {
			settings = *req.Settings
		}
		sess, err := s.sessions.Create(r.Context(), settings)
		if err != nil {
			s.sendSessionError(w, err)
			return
		}
		id = sess.ID
	}

	if req.Stream {
		s.streamChat(w, r, id, req.TurnInput)
		return
	}
	res, err := s.sessions.Chat(r.Context(), id, req.TurnInput)
	if err != nil {
		s.sendSessionError(w, err)
		return
	}
	sendJSON(w, res, http.StatusOK)
}

// streamChat sends the reply as server-sent events: one "delta" event per
// chunk, then "done" carrying the full result, or "error" if the stream
// broke after it started.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, id string, in session.TurnInput) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		sendJSONError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		started = true
	}

	res, err := s.sessions.ChatStream(r.Context(), id, in, func(delta string) error {
		start()
		if err := writeEvent(w, "delta", map[string]string{"text": delta}); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if !started {
		if err != nil {
			s.sendSessionError(w, err)
			return
		}
		start()
	}
	if err != nil {
		_ = writeEvent(w, "error", map[string]string{"error": err.Error()})
	} else {
		_ = writeEvent(w, "done", res)
	}
	flusher.Flush()
}

func writeEvent(w http.ResponseWriter, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
// #endregion chat
