package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// FileMetadata is the backend-owned record for one stored document. The
// client only ever holds a cached, possibly stale copy keyed by ID.
type FileMetadata struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	Author     string    `json:"author"`
	FileType   string    `json:"fileType"`
	Size       int64     `json:"size"`
	UploadTime time.Time `json:"uploadTime"`
	LastEdited time.Time `json:"lastEdited"`
	// Summary is filled in by backend post-processing and stays empty
	// until that completes.
	Summary string `json:"summary,omitempty"`
}

// HasSummary reports whether backend summary generation has finished.
func (m *FileMetadata) HasSummary() bool {
	return m != nil && m.Summary != ""
}

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ChatMessage is one message of a chat session as held locally. Optimistic
// local messages carry a client-generated ID; hydrated messages carry the
// server record ID rendered as a string.
type ChatMessage struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"sessionId,omitempty"`
}

// UploadStatus is the phase of an upload session.
type UploadStatus string

const (
	UploadIdle       UploadStatus = "idle"
	UploadUploading  UploadStatus = "uploading"
	UploadProcessing UploadStatus = "processing"
	UploadSuccess    UploadStatus = "success"
	UploadError      UploadStatus = "error"
)

// UploadProgress describes the observable state of an upload session.
type UploadProgress struct {
	Status   UploadStatus `json:"status"`
	Progress int          `json:"progress"`
	Message  string       `json:"message,omitempty"`
}

// DuplicateFileInfo describes a duplicate-upload conflict reported by the
// backend for a (filename, author) pair. ExistingFileID is 0 when the
// follow-up lookup could not resolve the conflicting record.
type DuplicateFileInfo struct {
	ExistingFileID int64  `json:"existingFileId"`
	Filename       string `json:"filename"`
	Author         string `json:"author"`
}
