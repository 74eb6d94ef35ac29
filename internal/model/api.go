package model

// ChatRequest is the request body for POST /chat.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the response body for POST /chat.
type ChatResponse struct {
	Success   bool     `json:"success"`
	Response  string   `json:"response"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"session_id"`
}

// FileUploadResponse is the response body for POST /upload.
type FileUploadResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
}

// DocumentsInfo describes the current document index.
type DocumentsInfo struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

// SessionInfo summarizes one active session.
type SessionInfo struct {
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	LastActivity string `json:"last_activity,omitempty"`
}
