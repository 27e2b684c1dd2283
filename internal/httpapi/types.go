package httpapi

import (
	"time"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/catalog"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/session"
)

// CreateSessionRequest is the body of POST /v1/sessions.
type CreateSessionRequest struct {
	SessionMode           string                 `json:"session_mode,omitempty"`
	Templates             []string               `json:"templates"`
	Model                 string                 `json:"model,omitempty"`
	LanguageHint          []string               `json:"language_hint,omitempty"`
	TranscriptLanguage    string                 `json:"transcript_language,omitempty"`
	UploadType            string                 `json:"upload_type"`
	CommunicationProtocol string                 `json:"communication_protocol,omitempty"`
	AdditionalData        map[string]interface{} `json:"additional_data,omitempty"`
}

// CreateSessionResponse is returned with 201 on session creation.
type CreateSessionResponse struct {
	SessionID string        `json:"session_id"`
	Status    session.State `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	UploadURL string        `json:"upload_url"`
}

// AudioUploadResponse is returned for an accepted chunk upload.
type AudioUploadResponse struct {
	Success          bool   `json:"success"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	SizeBytes        int64  `json:"size_bytes"`
}

// EndSessionRequest is the body of POST /v1/sessions/{id}/end.
type EndSessionRequest struct {
	AudioFilesSent int `json:"audio_files_sent"`
}

// EndSessionResponse is returned with 202 when processing starts.
type EndSessionResponse struct {
	SessionID          string        `json:"session_id"`
	Status             session.State `json:"status"`
	Message            string        `json:"message"`
	AudioFilesReceived int           `json:"audio_files_received"`
	AudioFiles         []string      `json:"audio_files"`
}

// TemplatesListResponse is the body of GET /v1/templates.
type TemplatesListResponse struct {
	Templates []catalog.Template `json:"templates"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message           string `json:"message"`
	Version           string `json:"version"`
	Protocol          string `json:"protocol"`
	DiscoveryEndpoint string `json:"discovery_endpoint"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
