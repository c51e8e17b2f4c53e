package types

import "time"

// ------------------------------
// Response Types
// ------------------------------

// EnqueueAck acknowledges that an async write was accepted by the executor.
type EnqueueAck struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}

// SearchResult is one hit in a search response.
type SearchResult struct {
	DocumentID      int64     `json:"documentId"`
	Filename        string    `json:"filename"`
	Author          string    `json:"author"`
	FileType        string    `json:"fileType"`
	Size            int64     `json:"size"`
	ObjectKey       string    `json:"objectKey,omitempty"`
	UploadTime      time.Time `json:"uploadTime"`
	Summary         string    `json:"summary,omitempty"`
	Score           float64   `json:"score,omitempty"`
	HighlightedText string    `json:"highlightedText,omitempty"`
}

// SearchResponse wraps the /v1/documents/search result. Result order is
// server-determined and must not be re-sorted locally.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalHits    int64          `json:"totalHits"`
	Page         int            `json:"page"`
	Size         int            `json:"size"`
	TotalPages   int            `json:"totalPages"`
	SearchTimeMs int64          `json:"searchTimeMs"`
}

// ChatMessageRecord is a chat message as persisted by the backend.
type ChatMessageRecord struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	SessionID string    `json:"sessionId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatResponse wraps the /v1/chat completion result.
type ChatResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
