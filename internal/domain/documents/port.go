package documents

import "context"

// Store keeps the most recently uploaded document per session.
// Put replaces unconditionally; Get never fails and reports ok=false before any upload.
type Store interface {
	Put(sessionID string, doc Document)
	Get(sessionID string) (Document, bool)
	Delete(sessionID string)
	Count() int
}

// TextExtractor turns raw PDF bytes into plain text, pages in order.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Archiver keeps a copy of uploaded files outside the process.
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
