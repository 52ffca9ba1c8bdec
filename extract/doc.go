// Copyright 2025 Poiesic Systems
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


// Package extract turns raw document bytes into an ordered sequence of
// core.TextBlock values, choosing between a native text-layer strategy
// and an image OCR strategy per page.
//
// Only the text/plain and text/markdown fast path ships a concrete
// strategy in this package: the native-text-layer coverage heuristic
// and the OCR fallback are exposed as the Strategy interface so a
// deployment can plug in a real PDF text layer reader and OCR backend
// without this package depending on either.
package extract
