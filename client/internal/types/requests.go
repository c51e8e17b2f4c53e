package types

import "io"

// ------------------------------
// Request Types
// ------------------------------

// WildcardQuery matches every document. Empty free-text terms are
// normalized to it before dispatch; a blank query is never sent.
const WildcardQuery = "*"

// SearchParams are the optional query-string filters for GET /v1/files.
// Empty fields are omitted from the request.
type SearchParams struct {
	Search      string
	Author      string
	FileType    string
	SearchField string
}

// SearchRequest is the payload for POST /v1/documents/search. All fields are
// scalar so the struct is comparable and can double as a cache key.
type SearchRequest struct {
	Query       string `json:"query"`
	Author      string `json:"author,omitempty"`
	FileType    string `json:"fileType,omitempty"`
	SearchField string `json:"searchField,omitempty"`
	Page        int    `json:"page"`
	Size        int    `json:"size"`
	SortBy      string `json:"sortBy,omitempty"`
	SortOrder   string `json:"sortOrder,omitempty"`
}

// UploadRequest holds the multipart payload for POST /v1/files.
type UploadRequest struct {
	Filename string
	Content  io.Reader
	Author   string
}

// UpdateRequest holds the multipart payload for PATCH /v1/files/{id}.
// Both fields are optional; a nil Content means metadata-only update.
type UpdateRequest struct {
	Filename string
	Content  io.Reader
	Author   string
}

// HasFile reports whether the update replaces the stored file content.
func (r UpdateRequest) HasFile() bool { return r.Content != nil }

// ChatMessageRequest is the payload for POST /v1/chat-messages.
type ChatMessageRequest struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	SessionID string `json:"sessionId,omitempty"`
}

// ChatRequest is the payload for POST /v1/chat. ConversationHistory carries
// the local message sequence so the completion is grounded in context.
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
}
