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
	"strings"

	"code.sajari.com/docconv"
)

// OCREngine recognizes text in a single image file. The extractor uses a
// primary engine (tesseract) and falls back to a secondary one when the
// primary errors or produces nothing.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, path string) (string, error)
}

// docconvEngine is the secondary OCR engine, backed by the docconv
// conversion library.
type docconvEngine struct{}

func (docconvEngine) Name() string { return "docconv" }

func (docconvEngine) Recognize(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return res.Body, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	text, err := e.ocrImage(ctx, path)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Pages: 1, Method: "image-ocr"}, nil
}

// ocrImage tries the primary tesseract engine first and chains to the
// fallback engine when tesseract fails or reads nothing.
func (e *Extractor) ocrImage(ctx context.Context, path string) (string, error) {
	text, err := e.tesseractOCR(ctx, path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	if err != nil {
		e.logger.Warn("primary ocr failed, trying fallback",
			"path", path, "fallback", e.fallback.Name(), "err", err)
	} else {
		e.logger.Debug("primary ocr read nothing, trying fallback",
			"path", path, "fallback", e.fallback.Name())
	}

	fbText, fbErr := e.fallback.Recognize(ctx, path)
	if fbErr != nil {
		if err != nil {
			return "", fmt.Errorf("ocr failed: %v; fallback: %w", err, fbErr)
		}
		return "", fbErr
	}
	return fbText, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
