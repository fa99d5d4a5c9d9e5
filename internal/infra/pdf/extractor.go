package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bryanwahyu/healthinsure-ai/internal/domain/documents"
)

// Extractor pulls plain text out of PDF bytes, pages in order.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(data []byte) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", documents.ErrUnreadablePDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", documents.ErrUnreadablePDF, err)
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extract text: %v", documents.ErrUnreadablePDF, err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("%w: read text: %v", documents.ErrUnreadablePDF, err)
	}

	text = SanitizeText(buf.String())
	if text == "" {
		return "", documents.ErrNoExtractableText
	}
	return text, nil
}
