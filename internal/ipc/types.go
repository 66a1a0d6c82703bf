package ipc

import (
	"time"

	"dbglog/internal/control"
)

// CategoryListRequest fetches the category report.
type CategoryListRequest struct{}

// CategoryListResponse carries the category report.
type CategoryListResponse struct {
	Report control.Report `json:"report"`
}

// CategoryToggleRequest names the categories to switch. A first name of
// "All" targets every registered category.
type CategoryToggleRequest struct {
	Names []string `json:"names"`
}

// CategoryToggleResponse reports the effect of a toggle.
type CategoryToggleResponse struct {
	Result control.Result `json:"result"`
}

// RecordStartRequest arms the spatial recorder. An empty name derives one
// from the current time.
type RecordStartRequest struct {
	Name string `json:"name"`
}

// RecordStartResponse returns the active recording file.
type RecordStartResponse struct {
	Path string `json:"path"`
}

// RecordStopRequest disarms the spatial recorder.
type RecordStopRequest struct{}

// RecordStopResponse describes the finished recording.
type RecordStopResponse struct {
	Path    string `json:"path"`
	Written int    `json:"written"`
}

// EmitResponse acknowledges a remote emit.
type EmitResponse struct {
	Accepted bool `json:"accepted"`
}

// StatusRequest fetches host status.
type StatusRequest struct{}

// StatusResponse summarizes a running host.
type StatusResponse struct {
	PID            int       `json:"pid"`
	SessionID      string    `json:"session_id"`
	Instance       int       `json:"instance"`
	StartedAt      time.Time `json:"started_at"`
	Socket         string    `json:"socket"`
	ConfigPath     string    `json:"config_path"`
	Categories     int       `json:"categories"`
	Disabled       int       `json:"disabled"`
	Recording      bool      `json:"recording"`
	RecordingPath  string    `json:"recording_path,omitempty"`
	MessageLogPath string    `json:"message_log_path,omitempty"`
	Sinks          []string  `json:"sinks"`
}

// OverlayRequest fetches the live overlay board.
type OverlayRequest struct{}

// OverlayEntry is one visible overlay line.
type OverlayEntry struct {
	Key       uint64    `json:"key"`
	Message   string    `json:"message"`
	Color     string    `json:"color"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OverlayResponse lists the visible overlay lines, oldest first.
type OverlayResponse struct {
	Entries []OverlayEntry `json:"entries"`
}
