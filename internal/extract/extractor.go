package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/chronoboard/backend/pkg/logger"
)

var (
	// ErrUnsupportedFormat is returned when the filename extension is not
	// in the allow-list.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrExtraction is returned when a decoder cannot parse the bytes.
	ErrExtraction = errors.New("extraction failed")
)

// Extractor turns uploaded file bytes into plain text. Format is chosen
// purely by filename suffix, case-insensitive.
type Extractor struct {
	logger logger.Logger
}

func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{logger: log}
}

// Supported reports whether the filename carries an extractable extension.
func (e *Extractor) Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".txt":
		return true
	}
	return false
}

// Extract returns the plain text of the file. Scanned PDF pages with no
// text layer contribute empty strings and are not an error; a document the
// decoder cannot open at all is.
func (e *Extractor) Extract(filename string, contents []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	e.logger.Debug("extracting document",
		logger.String("filename", filename),
		logger.String("ext", ext),
		logger.Int("size", len(contents)),
	)

	switch ext {
	case ".pdf":
		return extractPDF(contents)
	case ".docx":
		return extractDocx(contents)
	case ".txt":
		if !utf8.Valid(contents) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrExtraction, filename)
		}
		return string(contents), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
