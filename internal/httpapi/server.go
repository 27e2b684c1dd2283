// Package httpapi exposes the protocol's HTTP surface: session lifecycle,
// chunk upload, status polling, and the static discovery and template
// endpoints.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/catalog"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/config"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/observability"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/session"
)

// Server holds the handler dependencies.
type Server struct {
	cfg       *config.Config
	lifecycle *session.Lifecycle
	catalog   *catalog.Catalog
	logger    zerolog.Logger
}

// NewServer creates the HTTP surface over the lifecycle engine and catalog.
func NewServer(cfg *config.Config, lifecycle *session.Lifecycle, cat *catalog.Catalog) *Server {
	return &Server{
		cfg:       cfg,
		lifecycle: lifecycle,
		catalog:   cat,
		logger:    observability.GetLogger(),
	}
}

// Register attaches all protocol routes to the mux. Health, readiness and
// metrics endpoints are registered by the caller.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /.well-known/medscribealliance", s.handleDiscovery)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /v1/templates", s.handleTemplates)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("POST /v1/sessions/{id}/audio/{name}", s.handleUploadAudio)
	mux.HandleFunc("POST /v1/sessions/{id}/end", s.handleEndSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /v1/sessions/{id}/stream", s.handleStream)
}

// writeJSON writes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps an error to the protocol's error envelope. Protocol errors
// carry their own status and code; anything else is an opaque 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var pe *session.ProtocolError
	if errors.As(err, &pe) {
		s.writeJSON(w, pe.HTTPStatus(), ErrorResponse{Error: ErrorDetail{
			Code:    string(pe.Code),
			Message: pe.Message,
			Details: pe.Details,
		}})
		return
	}

	s.logger.Error().Err(err).Msg("Internal error")
	observability.RecordError("internal_error", "httpapi")
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
		Code:    "internal_error",
		Message: "An internal error occurred",
	}})
}

// writeValidationError rejects a malformed request body with 400. This covers
// transport-level problems (bad JSON, unknown enum values) that are outside
// the session error taxonomy.
func (s *Server) writeValidationError(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{
		Code:    "validation_error",
		Message: message,
	}})
}
