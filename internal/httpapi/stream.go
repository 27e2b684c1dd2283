package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/observability"
	"github.com/MedScribeAlliance/scribe-emr-protocol/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin enforcement happens at the authenticating proxy upstream.
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// streamControl is a text control frame on the upload stream.
type streamControl struct {
	Event          string `json:"event"`                      // "config" or "end"
	ContentType    string `json:"content_type,omitempty"`     // for "config"
	AudioFilesSent *int   `json:"audio_files_sent,omitempty"` // for "end"
}

// streamAck is sent after every accepted binary frame.
type streamAck struct {
	Event     string `json:"event"` // "accepted"
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

// streamEnded acknowledges an "end" control frame.
type streamEnded struct {
	Event              string        `json:"event"` // "ended"
	Status             session.State `json:"status"`
	AudioFilesReceived int           `json:"audio_files_received"`
}

type streamError struct {
	Event string      `json:"event"` // "error"
	Error ErrorDetail `json:"error"`
}

// handleStream serves the `stream` upload mode: each binary WebSocket message
// is one audio chunk with a server-assigned ascending sequence, and an "end"
// control frame closes the session exactly like POST .../end.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	// Reject unknown sessions before upgrading.
	if _, err := s.lifecycle.Snapshot(sessionID); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := observability.SessionLogger(sessionID, r.Header.Get("X-Correlation-ID"))
	logger.Info().Msg("Upload stream connected")

	contentType := "audio/webm;codecs=opus"
	seq := 0

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("Upload stream read error")
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			name := fmt.Sprintf("stream_%d%s", seq, extensionFor(contentType))
			rec, err := s.lifecycle.AcceptChunk(r.Context(), sessionID, name, contentType, data)
			if err != nil {
				s.writeStreamError(conn, err)
				var pe *session.ProtocolError
				if errors.As(err, &pe) && pe.Code != session.CodeUnsupportedAudioFormat {
					// The session can no longer accept audio; stop reading.
					return
				}
				continue
			}
			seq++
			conn.WriteJSON(streamAck{Event: "accepted", Filename: rec.StoredName, SizeBytes: rec.SizeBytes})

		case websocket.TextMessage:
			var ctl streamControl
			if err := json.Unmarshal(data, &ctl); err != nil {
				s.writeStreamError(conn, fmt.Errorf("invalid control frame: %w", err))
				continue
			}
			switch ctl.Event {
			case "config":
				if ctl.ContentType != "" {
					contentType = ctl.ContentType
				}
			case "end":
				claimed := seq
				if ctl.AudioFilesSent != nil {
					claimed = *ctl.AudioFilesSent
				}
				snap, err := s.lifecycle.End(r.Context(), sessionID, claimed)
				if err != nil {
					s.writeStreamError(conn, err)
					return
				}
				conn.WriteJSON(streamEnded{
					Event:              "ended",
					Status:             snap.State,
					AudioFilesReceived: len(snap.Chunks),
				})
				logger.Info().Int("chunks", len(snap.Chunks)).Msg("Upload stream ended")
				return
			default:
				s.writeStreamError(conn, fmt.Errorf("unknown stream event %q", ctl.Event))
			}
		}
	}
}

func (s *Server) writeStreamError(conn *websocket.Conn, err error) {
	detail := ErrorDetail{Code: "internal_error", Message: "An internal error occurred"}
	var pe *session.ProtocolError
	if errors.As(err, &pe) {
		detail = ErrorDetail{Code: string(pe.Code), Message: pe.Message, Details: pe.Details}
	} else {
		s.logger.Error().Err(err).Msg("Upload stream error")
	}
	conn.WriteJSON(streamError{Event: "error", Error: detail})
}

// extensionFor maps a content type back to a file extension for the
// server-assigned stream chunk names.
func extensionFor(contentType string) string {
	switch {
	case contentType == "audio/mp3":
		return ".mp3"
	case contentType == "audio/wav":
		return ".wav"
	case contentType == "audio/m4a":
		return ".m4a"
	case contentType == "audio/mp4":
		return ".mp4"
	case contentType == "audio/ogg", contentType == "audio/ogg;codecs=opus":
		return ".ogg"
	default:
		return ".webm"
	}
}
