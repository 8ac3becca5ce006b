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

// Package extract turns source documents into plain text.
//
// Strategy is selected by file extension:
//
//	.pdf        → pdftotext text layer; OCR of rasterized pages when empty
//	.jpg/.png   → tesseract OCR, docconv as the fallback engine
//	.txt        → read as-is
//
// PDF pages are always rasterized to PNG artifacts via pdftoppm, so callers
// keep a per-page image trail even when the text layer was usable. External
// tools run through the Runner interface, which tests stub out.
//
// Unknown extensions surface ErrUnsupportedFormat; callers are expected to
// skip such files rather than fail the batch.
package extract
