package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	maxTextBytes     = 100 * 1024 // cap on locally extracted text
	scannedThreshold = 50         // chars per page below which the PDF is treated as scanned
)

// LocalTextExtractor pulls plain text straight out of a PDF's text layer.
// It stands in for the remote markdown service when no API key is
// configured; scanned statements need the real service.
type LocalTextExtractor struct{}

// ExtractText returns the document's text, or an error if the PDF has no
// usable text layer.
func (LocalTextExtractor) ExtractText(data []byte) (text string, err error) {
	// The pdf library can panic on malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Code: ErrInvalidDocument, Message: fmt.Sprintf("pdf parse panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{Code: ErrInvalidDocument, Message: "open pdf", Cause: err}
	}

	pageCount := reader.NumPage()
	if pageCount == 0 {
		return "", &Error{Code: ErrInvalidDocument, Message: "pdf has no pages"}
	}

	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
		if sb.Len() > maxTextBytes {
			break
		}
	}

	out := sb.String()
	if len(out) > maxTextBytes {
		out = out[:maxTextBytes]
	}
	if len(strings.TrimSpace(out))/pageCount < scannedThreshold {
		return "", &Error{Code: ErrInvalidDocument, Message: "pdf appears to be scanned; text layer too sparse"}
	}
	return out, nil
}
