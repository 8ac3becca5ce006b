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

import "errors"

// ErrUnsupportedFormat indicates a file whose extension maps to no known
// extraction strategy. Callers skip the file and move on; it never fails
// the surrounding work.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoPagesRendered indicates rasterization of a PDF produced no page
// images, so OCR had nothing to read.
var ErrNoPagesRendered = errors.New("no pages rendered")
