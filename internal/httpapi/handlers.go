package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/catalog"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/observability"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/session"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, RootResponse{
		Message:           "MedScribe Alliance Protocol - " + s.cfg.ServiceName,
		Version:           catalog.ProtocolVersion,
		Protocol:          catalog.ProtocolName,
		DiscoveryEndpoint: "/.well-known/medscribealliance",
	})
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	doc := s.catalog.BuildDiscovery(s.cfg.BaseURL, s.cfg.ServiceName, s.cfg.SupportEmail)
	// The discovery document is static per deployment.
	w.Header().Set("Cache-Control", "max-age=10800")
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, TemplatesListResponse{Templates: s.catalog.Templates()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeValidationError(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	uploadType := session.UploadType(req.UploadType)
	if !uploadType.Valid() {
		s.writeValidationError(w, fmt.Sprintf("upload_type must be one of chunked, single, stream; got '%s'", req.UploadType))
		return
	}
	if req.Model != "" {
		if _, ok := s.catalog.Model(req.Model); !ok {
			s.writeValidationError(w, fmt.Sprintf("model '%s' does not exist", req.Model))
			return
		}
	}

	snap, err := s.lifecycle.Create(r.Context(), session.Config{
		SessionMode:        req.SessionMode,
		Templates:          req.Templates,
		Model:              req.Model,
		LanguageHints:      req.LanguageHint,
		TranscriptLanguage: req.TranscriptLanguage,
		UploadType:         uploadType,
		AdditionalData:     req.AdditionalData,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: snap.ID,
		Status:    snap.State,
		CreatedAt: snap.CreatedAt,
		ExpiresAt: snap.ExpiresAt,
		UploadURL: fmt.Sprintf("%s/v1/sessions/%s/audio", s.cfg.BaseURL, snap.ID),
	})
}

func (s *Server) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	fileName := r.PathValue("name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxChunkBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, &session.ProtocolError{
				Code:    session.CodePayloadTooLarge,
				Message: fmt.Sprintf("File exceeds maximum %d bytes", s.cfg.MaxChunkBytes),
			})
			return
		}
		s.writeError(w, fmt.Errorf("failed to read request body: %w", err))
		return
	}

	rec, err := s.lifecycle.AcceptChunk(r.Context(), sessionID, fileName, r.Header.Get("Content-Type"), body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, AudioUploadResponse{
		Success:          true,
		Filename:         rec.StoredName,
		OriginalFilename: rec.OriginalName,
		SizeBytes:        rec.SizeBytes,
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeValidationError(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.AudioFilesSent < 0 {
		s.writeValidationError(w, "audio_files_sent must be non-negative")
		return
	}

	snap, err := s.lifecycle.End(r.Context(), sessionID, req.AudioFilesSent)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, EndSessionResponse{
		SessionID:          snap.ID,
		Status:             snap.State,
		Message:            "Session ended. Processing started.",
		AudioFilesReceived: len(snap.Chunks),
		AudioFiles:         snap.ChunkNames(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	snap, err := s.lifecycle.Snapshot(sessionID)
	if err != nil {
		observability.RecordPollResponse(strconv.Itoa(http.StatusNotFound))
		s.writeError(w, err)
		return
	}

	status, payload, err := session.RenderPoll(snap)
	if err != nil {
		s.writeError(w, err)
		return
	}

	observability.RecordPollResponse(strconv.Itoa(status))
	s.writeJSON(w, status, payload)
}
