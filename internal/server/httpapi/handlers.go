package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/discussions-app/core/internal/common"
	"github.com/discussions-app/core/internal/server/services"
)

// maxSnapshotSize bounds an uploaded snapshot blob.
const maxSnapshotSize = 1 << 20

type authRequest struct {
	PublicKey string `json:"public_key"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.authAttempts.WithLabelValues("malformed").Inc()
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	token, err := s.service.Authorize(r.Context(), req.PublicKey, req.Timestamp, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrStaleChallenge), errors.Is(err, common.ErrInvalidSignature):
			s.metrics.authAttempts.WithLabelValues("rejected").Inc()
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			s.metrics.authAttempts.WithLabelValues("error").Inc()
			s.log.Error(r.Context(), "auth failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	s.metrics.authAttempts.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResponse{AccessToken: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	publicKey := publicKeyFromContext(r.Context())

	err := s.service.Register(r.Context(), publicKey)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusCreated)
	case errors.Is(err, common.ErrorAlreadyExists):
		w.WriteHeader(http.StatusConflict)
	default:
		s.log.Error(r.Context(), "register failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	publicKey := publicKeyFromContext(r.Context())

	blob, err := s.service.GetSnapshot(r.Context(), publicKey)
	switch {
	case err == nil:
		s.metrics.snapshotReads.Inc()
		w.Header().Set("Content-Type", "application/json")
		w.Write(blob)
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, "no snapshot", http.StatusNotFound)
	default:
		s.log.Error(r.Context(), "snapshot fetch failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	publicKey := publicKeyFromContext(r.Context())

	blob, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotSize+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(blob) > maxSnapshotSize {
		http.Error(w, "snapshot too large", http.StatusRequestEntityTooLarge)
		return
	}

	err = s.service.ReplaceSnapshot(r.Context(), publicKey, blob)
	switch {
	case err == nil:
		s.metrics.snapshotWrites.Inc()
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, common.ErrorNotFound):
		http.Error(w, "unknown account", http.StatusNotFound)
	case errors.Is(err, services.ErrMalformedSnapshot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error(r.Context(), "snapshot replace failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
