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


package store

import "errors"

var (
	// ErrNotFound indicates the requested chunk was not found.
	ErrNotFound = errors.New("store: chunk not found")

	// ErrClosed indicates the store backend is closed.
	ErrClosed = errors.New("store: backend is closed")

	// ErrSerializationFailed indicates a record codec failure.
	ErrSerializationFailed = errors.New("store: serialization failed")

	// ErrPolicyIsolationViolation indicates an operation attempted to
	// cross a policy boundary. This is the one FATAL condition named
	// by the chunk store's contract: PutBatch panics with this error
	// wrapped in, rather than returning it, since it signals corrupted
	// caller state rather than an input the caller can recover from.
	ErrPolicyIsolationViolation = errors.New("store: policy isolation violation")

	// ErrDimensionMismatch indicates a query or stored vector's length
	// does not match the deployment's fixed embedding dimension. This
	// is reported as an error, never a panic.
	ErrDimensionMismatch = errors.New("store: embedding dimension mismatch")
)
