package assistant

import "errors"

var (
	ErrUnsupportedFileType = errors.New("Only PDF files are allowed.")
	ErrInvalidAction       = errors.New("Invalid blockchain action.")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
)
