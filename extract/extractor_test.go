package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner fakes the external tools. pdftoppm invocations create the page
// PNGs on disk so the glob in renderPageImages finds them.
type stubRunner struct {
	pdfText   string
	ocrText   string
	pageCount int

	pdftotextErr error
	tesseractErr error

	calls []string
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	switch name {
	case "pdftotext":
		if s.pdftotextErr != nil {
			return nil, []byte("boom"), s.pdftotextErr
		}
		return []byte(s.pdfText), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= s.pageCount; i++ {
			path := fmt.Sprintf("%s-%d.png", prefix, i)
			if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		if s.tesseractErr != nil {
			return nil, []byte("tesseract error"), s.tesseractErr
		}
		return []byte(s.ocrText), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected command %q", name)
}

// stubEngine is a fallback OCR engine with canned output.
type stubEngine struct {
	text string
	err  error
}

func (stubEngine) Name() string { return "stub" }

func (s stubEngine) Recognize(ctx context.Context, path string) (string, error) {
	return s.text, s.err
}

func newTestExtractor(t *testing.T, runner *stubRunner) *Extractor {
	t.Helper()
	return NewExtractor(Config{ArtifactDir: t.TempDir()}, nil).WithRunner(runner)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"doc.pdf", FormatPDF},
		{"scan.PDF", FormatPDF},
		{"photo.jpg", FormatImage},
		{"photo.jpeg", FormatImage},
		{"shot.png", FormatImage},
		{"notes.txt", FormatText},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	for _, path := range []string{"archive.zip", "doc.docx", "noext"} {
		_, err := DetectFormat(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, path)
	}
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	ex := newTestExtractor(t, &stubRunner{})
	res, err := ex.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "hello world", res.Text)
	assert.Equal(t, FormatText, res.Format)
	assert.Equal(t, "plain-text", res.Method)
	assert.Equal(t, 1, res.Pages)
}

func TestExtractPDFWithTextLayer(t *testing.T) {
	runner := &stubRunner{pdfText: "page one\fpage two", pageCount: 2}
	ex := newTestExtractor(t, runner)

	res, err := ex.Extract(context.Background(), "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "page one\fpage two", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "pdf-text", res.Method)
	// No OCR needed when the text layer is usable.
	assert.NotContains(t, runner.calls, "tesseract")
	// Page images are still rendered.
	assert.Contains(t, runner.calls, "pdftoppm")
}

func TestExtractScannedPDFFallsBackToOCR(t *testing.T) {
	runner := &stubRunner{pdfText: "  \n ", ocrText: "scanned text", pageCount: 3}
	ex := newTestExtractor(t, runner)

	res, err := ex.Extract(context.Background(), "scan.pdf")
	require.NoError(t, err)

	assert.Contains(t, res.Text, "scanned text")
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.Contains(t, runner.calls, "tesseract")
}

func TestExtractScannedPDFNoPages(t *testing.T) {
	runner := &stubRunner{pdfText: "", pageCount: 0}
	ex := newTestExtractor(t, runner)

	_, err := ex.Extract(context.Background(), "scan.pdf")
	assert.ErrorIs(t, err, ErrNoPagesRendered)
}

func TestExtractPDFToolFailure(t *testing.T) {
	runner := &stubRunner{pdftotextErr: errors.New("exit status 1")}
	ex := newTestExtractor(t, runner)

	_, err := ex.Extract(context.Background(), "report.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext")
}

func TestExtractImagePrimaryEngine(t *testing.T) {
	runner := &stubRunner{ocrText: "receipt total 12.00"}
	ex := newTestExtractor(t, runner)

	res, err := ex.Extract(context.Background(), "receipt.png")
	require.NoError(t, err)

	assert.Equal(t, "receipt total 12.00", res.Text)
	assert.Equal(t, "image-ocr", res.Method)
}

func TestExtractImageFallbackEngine(t *testing.T) {
	runner := &stubRunner{tesseractErr: errors.New("exit status 1")}
	ex := newTestExtractor(t, runner).WithFallbackEngine(stubEngine{text: "from fallback"})

	res, err := ex.Extract(context.Background(), "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", res.Text)
}

func TestExtractImageFallbackOnEmptyPrimary(t *testing.T) {
	runner := &stubRunner{ocrText: "   "}
	ex := newTestExtractor(t, runner).WithFallbackEngine(stubEngine{text: "fallback saw text"})

	res, err := ex.Extract(context.Background(), "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "fallback saw text", res.Text)
}

func TestExtractImageBothEnginesFail(t *testing.T) {
	runner := &stubRunner{tesseractErr: errors.New("exit status 1")}
	ex := newTestExtractor(t, runner).WithFallbackEngine(stubEngine{err: errors.New("fallback down")})

	_, err := ex.Extract(context.Background(), "photo.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	ex := newTestExtractor(t, &stubRunner{})
	_, err := ex.Extract(context.Background(), "archive.zip")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
