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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
)

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	text, pages, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		return Result{Warnings: warns}, err
	}

	// Page images are rendered regardless of whether the text layer is
	// usable. They feed downstream consumers and the OCR fallback alike.
	images, imgWarns, imgErr := e.renderPageImages(ctx, path)
	warns = append(warns, imgWarns...)

	if strings.TrimSpace(text) != "" {
		return Result{Text: text, Pages: pages, Method: "pdf-text", Warnings: warns}, nil
	}

	// Empty text layer: the PDF is likely scanned. OCR the rendered pages.
	e.logger.Info("pdf has no text layer, falling back to ocr", "path", path)
	if imgErr != nil {
		return Result{Warnings: warns}, imgErr
	}

	text, ocrWarns, err := e.ocrPages(ctx, images)
	warns = append(warns, ocrWarns...)
	if err != nil {
		return Result{Warnings: warns}, err
	}
	return Result{Text: text, Pages: len(images), Method: "pdf-ocr", Warnings: warns}, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}

// renderPageImages rasterizes each PDF page to a PNG under the artifact
// directory, one subdirectory per source file.
func (e *Extractor) renderPageImages(ctx context.Context, path string) ([]string, []string, error) {
	dir := filepath.Join(e.cfg.ArtifactDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <dir/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, ErrNoPagesRendered
	}
	return matches, nil, nil
}

// ocrPages runs OCR over the page images concurrently, bounded by the
// configured pool size, and joins the results in page order.
func (e *Extractor) ocrPages(ctx context.Context, images []string) (string, []string, error) {
	pool, err := ants.NewPool(e.cfg.OCRPoolSize)
	if err != nil {
		return "", nil, err
	}
	defer pool.Release()

	texts := make([]string, len(images))
	errs := make([]error, len(images))
	var wg sync.WaitGroup

	for i, img := range images {
		i, img := i, img
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			texts[i], errs[i] = e.ocrImage(ctx, img)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	var b strings.Builder
	var warns []string
	for i, txt := range texts {
		if errs[i] != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i+1, errs[i]))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String(), warns, nil
}
