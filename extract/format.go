package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the extraction strategy for a file.
type Format string

const (
	// FormatPDF is extracted via the text layer, falling back to OCR of
	// rasterized pages when the text layer is empty.
	FormatPDF Format = "pdf"

	// FormatImage is extracted via OCR.
	FormatImage Format = "image"

	// FormatText is read as-is.
	FormatText Format = "text"
)

// DetectFormat maps a filename to its extraction format by extension.
// Returns an error wrapping ErrUnsupportedFormat for anything unrecognized.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".jpg", ".jpeg", ".png":
		return FormatImage, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
