package common

import (
	"fmt"

	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewMediaID generates a unique media item ID with the "media_" prefix
func NewMediaID() string {
	return "media_" + uuid.New().String()
}

// ChunkID builds the storage key of a chunk from its document and ordinal.
// Zero-padding keeps lexical ordering equal to ordinal ordering.
func ChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s:%05d", documentID, ordinal)
}
