package session

import (
	"fmt"
	"net/http"
	"time"
)

// Poll payload shapes. One struct per externally distinguishable state, field
// sets matching the protocol's published response models.

// ProcessingView is returned for created, recording and processing sessions.
type ProcessingView struct {
	SessionID          string                 `json:"session_id"`
	Status             State                  `json:"status"`
	CreatedAt          time.Time              `json:"created_at"`
	ExpiresAt          time.Time              `json:"expires_at"`
	AudioFilesReceived int                    `json:"audio_files_received"`
	AudioFiles         []string               `json:"audio_files"`
	AdditionalData     map[string]interface{} `json:"additional_data"`
	Transcript         *string                `json:"transcript"`
}

// CompletedView is returned for completed sessions.
type CompletedView struct {
	SessionID          string                    `json:"session_id"`
	Status             State                     `json:"status"`
	CreatedAt          time.Time                 `json:"created_at"`
	CompletedAt        *time.Time                `json:"completed_at"`
	ModelUsed          string                    `json:"model_used"`
	LanguageDetected   string                    `json:"language_detected,omitempty"`
	AudioFilesReceived int                       `json:"audio_files_received"`
	AudioFiles         []string                  `json:"audio_files"`
	AdditionalData     map[string]interface{}    `json:"additional_data"`
	Templates          map[string]TemplateResult `json:"templates"`
	Transcript         *string                   `json:"transcript"`
}

// PartialView is returned for partially completed sessions.
type PartialView struct {
	SessionID           string                    `json:"session_id"`
	Status              State                     `json:"status"`
	CreatedAt           time.Time                 `json:"created_at"`
	CompletedAt         *time.Time                `json:"completed_at"`
	ModelUsed           string                    `json:"model_used"`
	LanguageDetected    string                    `json:"language_detected,omitempty"`
	AudioFilesReceived  int                       `json:"audio_files_received"`
	AudioFilesProcessed int                       `json:"audio_files_processed"`
	AudioFiles          []string                  `json:"audio_files"`
	AdditionalData      map[string]interface{}    `json:"additional_data"`
	Templates           map[string]TemplateResult `json:"templates"`
	Transcript          *string                   `json:"transcript"`
	ProcessingErrors    []ProcessingError         `json:"processing_errors"`
}

// FailedView is returned for failed sessions.
type FailedView struct {
	SessionID          string                 `json:"session_id"`
	Status             State                  `json:"status"`
	CreatedAt          time.Time              `json:"created_at"`
	CompletedAt        *time.Time             `json:"completed_at"`
	ModelUsed          string                 `json:"model_used"`
	AudioFilesReceived int                    `json:"audio_files_received"`
	AudioFiles         []string               `json:"audio_files"`
	AdditionalData     map[string]interface{} `json:"additional_data"`
	ProcessingErrors   []ProcessingError      `json:"processing_errors"`
}

// ExpiredView is returned for expired sessions, carrying the frozen chunk and
// result data.
type ExpiredView struct {
	SessionID          string                    `json:"session_id"`
	Status             State                     `json:"status"`
	CreatedAt          time.Time                 `json:"created_at"`
	ExpiredAt          time.Time                 `json:"expired_at"`
	Message            string                    `json:"message"`
	AudioFilesReceived int                       `json:"audio_files_received"`
	AudioFiles         []string                  `json:"audio_files"`
	AdditionalData     map[string]interface{}    `json:"additional_data"`
	Templates          map[string]TemplateResult `json:"templates"`
	Transcript         *string                   `json:"transcript"`
}

// RenderPoll maps a session snapshot to the HTTP status code and payload of a
// status poll. The mapping is exhaustive over all defined states; an
// unrecognized state is an error so a new state can never silently reuse an
// old response shape.
func RenderPoll(snap Snapshot) (int, interface{}, error) {
	switch snap.State {
	case StateCreated, StateRecording, StateProcessing:
		return http.StatusAccepted, ProcessingView{
			SessionID:          snap.ID,
			Status:             snap.State,
			CreatedAt:          snap.CreatedAt,
			ExpiresAt:          snap.ExpiresAt,
			AudioFilesReceived: len(snap.Chunks),
			AudioFiles:         snap.ChunkNames(),
			AdditionalData:     snap.AdditionalData,
			Transcript:         partialTranscript(snap),
		}, nil

	case StateCompleted:
		return http.StatusOK, CompletedView{
			SessionID:          snap.ID,
			Status:             snap.State,
			CreatedAt:          snap.CreatedAt,
			CompletedAt:        snap.CompletedAt,
			ModelUsed:          snap.Model,
			LanguageDetected:   outcomeLanguage(snap),
			AudioFilesReceived: len(snap.Chunks),
			AudioFiles:         snap.ChunkNames(),
			AdditionalData:     snap.AdditionalData,
			Templates:          outcomeTemplates(snap),
			Transcript:         outcomeTranscript(snap),
		}, nil

	case StatePartial:
		view := PartialView{
			SessionID:          snap.ID,
			Status:             snap.State,
			CreatedAt:          snap.CreatedAt,
			CompletedAt:        snap.CompletedAt,
			ModelUsed:          snap.Model,
			LanguageDetected:   outcomeLanguage(snap),
			AudioFilesReceived: len(snap.Chunks),
			AudioFiles:         snap.ChunkNames(),
			AdditionalData:     snap.AdditionalData,
			Templates:          outcomeTemplates(snap),
			Transcript:         outcomeTranscript(snap),
		}
		if snap.Outcome != nil {
			view.AudioFilesProcessed = snap.Outcome.ChunksProcessed
			view.ProcessingErrors = snap.Outcome.ProcessingErrors
		}
		return http.StatusPartialContent, view, nil

	case StateFailed:
		view := FailedView{
			SessionID:          snap.ID,
			Status:             snap.State,
			CreatedAt:          snap.CreatedAt,
			CompletedAt:        snap.CompletedAt,
			ModelUsed:          snap.Model,
			AudioFilesReceived: len(snap.Chunks),
			AudioFiles:         snap.ChunkNames(),
			AdditionalData:     snap.AdditionalData,
		}
		if snap.Outcome != nil {
			view.ProcessingErrors = snap.Outcome.ProcessingErrors
		}
		return http.StatusOK, view, nil

	case StateExpired:
		message := "Session expired before processing was initiated"
		if snap.EndedAt != nil {
			message = "Session expired before processing completed"
		}
		return http.StatusGone, ExpiredView{
			SessionID:          snap.ID,
			Status:             snap.State,
			CreatedAt:          snap.CreatedAt,
			ExpiredAt:          snap.ExpiresAt,
			Message:            message,
			AudioFilesReceived: len(snap.Chunks),
			AudioFiles:         snap.ChunkNames(),
			AdditionalData:     snap.AdditionalData,
			Templates:          outcomeTemplates(snap),
			Transcript:         outcomeTranscript(snap),
		}, nil

	default:
		return 0, nil, fmt.Errorf("no poll mapping for session state %q", snap.State)
	}
}

// partialTranscript surfaces an interim transcript while processing, when the
// engine has produced one. Sessions still recording never have a transcript.
func partialTranscript(snap Snapshot) *string {
	if snap.State == StateProcessing {
		return outcomeTranscript(snap)
	}
	return nil
}

func outcomeTranscript(snap Snapshot) *string {
	if snap.Outcome == nil || snap.Outcome.Transcript == "" {
		return nil
	}
	t := snap.Outcome.Transcript
	return &t
}

func outcomeLanguage(snap Snapshot) string {
	if snap.Outcome == nil {
		return ""
	}
	return snap.Outcome.Language
}

func outcomeTemplates(snap Snapshot) map[string]TemplateResult {
	if snap.Outcome == nil || snap.Outcome.Templates == nil {
		return map[string]TemplateResult{}
	}
	return snap.Outcome.Templates
}
