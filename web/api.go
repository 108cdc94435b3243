package web

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gophersatwork/abacus"
)

// maxBodySize bounds API request bodies.
const maxBodySize = 4 << 10

// pressRequest carries a keyboard key, or a keypad button value or action.
type pressRequest struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Action string `json:"action"`
}

// selectRequest picks a history entry.
type selectRequest struct {
	Index *int `json:"index"`
}

// historyResponse lists the history, most recent first.
type historyResponse struct {
	History []string `json:"history"`
	Count   int      `json:"count"`
}

// healthResponse reports liveness and store statistics.
type healthResponse struct {
	Status    string        `json:"status"`
	Sessions  int           `json:"sessions"`
	Store     *abacus.Stats `json:"store,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// handleIndex serves the keypad page.
func (s *Server) handleIndex() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := fs.ReadFile(staticFiles, "static/index.html")
		if err != nil {
			s.log.Error("failed to read index page", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})
}

// handleDisplay returns the API session's display.
func (s *Server) handleDisplay() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.api.Display())
	}))
}

// handlePress applies a key or button to the API session.
func (s *Server) handlePress() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req pressRequest
		if err := decodeBody(r, &req); err != nil {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		if req.Key != "" {
			d, ok := s.api.PressKey(req.Key)
			if !ok {
				WriteJSONError(w, http.StatusBadRequest, "unmapped key: "+req.Key)
				return
			}
			s.writeJSON(w, http.StatusOK, d)
			return
		}

		if req.Value == "" && req.Action == "" {
			WriteJSONError(w, http.StatusBadRequest, "one of key, value or action is required")
			return
		}
		d, err := s.api.PressButton(req.Value, req.Action)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, d)
	}))
}

// handleHistory lists the API session's history.
func (s *Server) handleHistory() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries := s.api.History().Entries()
		s.writeJSON(w, http.StatusOK, historyResponse{History: entries, Count: len(entries)})
	}))
}

// handleClearHistory empties the history.
func (s *Server) handleClearHistory() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.api.ClearHistory())
	}))
}

// handleSelectHistory loads a history entry's result as the current operand.
func (s *Server) handleSelectHistory() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req selectRequest
		if err := decodeBody(r, &req); err != nil {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Index == nil {
			WriteJSONError(w, http.StatusBadRequest, "index is required")
			return
		}

		d, err := s.api.SelectHistory(*req.Index)
		switch {
		case errors.Is(err, abacus.ErrEntryNotFound):
			WriteJSONError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, abacus.ErrMalformedEntry):
			WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())
		case err != nil:
			WriteJSONError(w, http.StatusInternalServerError, err.Error())
		default:
			s.writeJSON(w, http.StatusOK, d)
		}
	}))
}

// handleToggleTheme flips the theme.
func (s *Server) handleToggleTheme() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.api.ToggleTheme())
	}))
}

// handleHealth reports whether the store is readable.
func (s *Server) handleHealth() http.Handler {
	return JSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:    "ok",
			Sessions:  s.Sessions(),
			Timestamp: time.Now(),
		}
		status := http.StatusOK

		stats, err := s.store.Stats()
		if err != nil {
			s.log.Warn("store statistics unavailable", zap.Error(err))
			resp.Status = "error"
			status = http.StatusServiceUnavailable
		} else {
			resp.Store = &stats
		}

		s.writeJSON(w, status, resp)
	}))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("failed to write response", zap.Error(err))
	}
}

// decodeBody decodes a bounded JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}
