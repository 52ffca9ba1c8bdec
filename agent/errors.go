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


package agent

import "errors"

var (
	// ErrStoreRequired is returned when a chunk store is not provided.
	ErrStoreRequired = errors.New("agent: chunk store required")

	// ErrProviderRequired is returned when an airag provider is not provided.
	ErrProviderRequired = errors.New("agent: airag provider required")

	// ErrPolicyIDRequired is returned when Run is called without a policy_id.
	ErrPolicyIDRequired = errors.New("agent: policy_id required")

	// ErrInvalidMaxAttempts is returned when retryWithBackoff is given
	// a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("agent: maxAttempts must be greater than 0")

	// ErrGroundingFailure marks a composed answer that referenced a
	// claim not present in any supplied citation. The verdict is
	// downgraded to UNKNOWN and this is audit-logged, never returned
	// to the caller as a fatal turn error.
	ErrGroundingFailure = errors.New("agent: composed answer not grounded in supplied citations")
)
