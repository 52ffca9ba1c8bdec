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


// Package store defines the Store interface the chunker and coverage
// guardrail depend on for persisting and retrieving policy chunks.
//
// store/badger provides the embedded BadgerDB-backed implementation:
// an exact brute-force cosine scan per policy, bounded by a
// policy-prefixed secondary index so the scan never touches another
// policy's chunks.
package store
