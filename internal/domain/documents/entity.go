package documents

import "time"

// Document is the extracted text of an uploaded policy document.
type Document struct {
	SessionID  string    `json:"session_id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	UploadedAt time.Time `json:"uploaded_at"`
}
