package types

import (
	"fmt"
	"strings"
)

// Client-side validation. These checks run before dispatch so invalid input
// never reaches the wire (it is a validation failure, not a backend error).

// ValidateFileID validates a document identifier.
func ValidateFileID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("file id must be positive, got %d", id)
	}
	return nil
}

// ValidateAuthor validates the author form field.
func ValidateAuthor(author string) error {
	if strings.TrimSpace(author) == "" {
		return fmt.Errorf("author is required")
	}
	return nil
}

// ValidateFilename validates the upload filename.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename is required")
	}
	return nil
}

// ValidateSessionID validates a chat session identifier.
func ValidateSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionId is required")
	}
	return nil
}

// ValidateMessageRole validates a chat message role.
func ValidateMessageRole(role string) error {
	switch MessageRole(role) {
	case RoleUser, RoleAssistant, RoleSystem:
		return nil
	default:
		return fmt.Errorf("role must be one of user, assistant, system; got %q", role)
	}
}
