package client

import "github.com/paperless/paperless-go/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.

// Requests
type (
	SearchParams       = types.SearchParams
	SearchRequest      = types.SearchRequest
	UploadRequest      = types.UploadRequest
	UpdateRequest      = types.UpdateRequest
	ChatMessageRequest = types.ChatMessageRequest
	ChatRequest        = types.ChatRequest
)

// Domain entities
type (
	FileMetadata      = types.FileMetadata
	ChatMessage       = types.ChatMessage
	MessageRole       = types.MessageRole
	UploadStatus      = types.UploadStatus
	UploadProgress    = types.UploadProgress
	DuplicateFileInfo = types.DuplicateFileInfo
)

// Responses
type (
	EnqueueAck        = types.EnqueueAck
	SearchResult      = types.SearchResult
	SearchResponse    = types.SearchResponse
	ChatMessageRecord = types.ChatMessageRecord
	ChatResponse      = types.ChatResponse
)

// Message roles.
const (
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant
	RoleSystem    = types.RoleSystem
)

// Upload phases.
const (
	UploadIdle       = types.UploadIdle
	UploadUploading  = types.UploadUploading
	UploadProcessing = types.UploadProcessing
	UploadSuccess    = types.UploadSuccess
	UploadError      = types.UploadError
)

// WildcardQuery matches every document; empty search terms normalize to it.
const WildcardQuery = types.WildcardQuery
