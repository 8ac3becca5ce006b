// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package extract

import (
	"context"
	"log/slog"
	"time"
)

// Config holds tool paths and tuning for document extraction.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for PDF pages, default 300
	MaxPages      int    // 0 = no limit

	// ArtifactDir receives the rendered per-page PNG images.
	// Default "./artifacts".
	ArtifactDir string

	// OCRPoolSize bounds how many pages are OCR'd concurrently when a PDF
	// has no text layer. Default 4.
	OCRPoolSize int
}

// Result is the outcome of extracting one file.
type Result struct {
	Text     string
	Pages    int
	Format   Format
	Method   string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Duration time.Duration
	Warnings []string
}

// Extractor turns source documents into plain text.
type Extractor struct {
	cfg      Config
	runner   Runner
	fallback OCREngine
	logger   *slog.Logger
}

// NewExtractor creates an extractor with defaulted configuration.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default().With("component", "extractor")
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = "./artifacts"
	}
	if cfg.OCRPoolSize <= 0 {
		cfg.OCRPoolSize = 4
	}
	return &Extractor{
		cfg:      cfg,
		runner:   execRunner{},
		fallback: docconvEngine{},
		logger:   logger,
	}
}

// WithRunner replaces the command runner. Tests use this to stub the
// external tools.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// WithFallbackEngine replaces the secondary OCR engine.
func (e *Extractor) WithFallbackEngine(engine OCREngine) *Extractor {
	e.fallback = engine
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	format, err := DetectFormat(path)
	if err != nil {
		return Result{}, err
	}
	e.logger.Debug("starting extraction", "path", path, "format", format)

	var res Result
	switch format {
	case FormatPDF:
		res, err = e.extractPDF(ctx, path)
	case FormatImage:
		res, err = e.extractImage(ctx, path)
	case FormatText:
		res, err = e.extractPlainText(path)
	}
	res.Format = format
	res.Duration = time.Since(start)
	return res, err
}
