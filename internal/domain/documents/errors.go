package documents

import "errors"

var (
	// ErrUnreadablePDF is returned when the content cannot be parsed as a PDF.
	ErrUnreadablePDF = errors.New("unreadable pdf")
	// ErrNoExtractableText is returned when a PDF parses but yields no text.
	ErrNoExtractableText = errors.New("Could not extract text from PDF.")
)
