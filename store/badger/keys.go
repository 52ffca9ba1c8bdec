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


package badger

import (
	"encoding/binary"

	"github.com/poiesic/guardrail/core"
)

// Key prefixes for the chunk store's primary record and the
// policy-prefixed secondary index that bounds similarity scans and
// deletions to a single policy.
const (
	chunkPrefix        = "chunk"
	chunkPolicyIndex   = "chunkpol"
	chunkIDSeq         = "chunkseq"
	policyRecordPrefix = "policyrec"
)

// makeChunkKey generates the primary key for a chunk by id.
func makeChunkKey(id core.ID) []byte {
	buf := make([]byte, len(chunkPrefix)+1+8)
	offset := copy(buf, chunkPrefix)
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePolicyIndexKey generates the secondary index key ordering chunks
// within a policy by Position, then id, so a prefix scan over the
// policy yields chunks in document order. Format:
// chunkpol:<policyID>:<position BE>:<id BE>
func makePolicyIndexKey(policyID string, position int, id core.ID) []byte {
	prefix := makePolicyIndexPrefix(policyID)
	buf := make([]byte, len(prefix)+4+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(position))
	offset += 4
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePolicyIndexPrefix generates the prefix all of a policy's index
// entries share: chunkpol:<policyID>:
func makePolicyIndexPrefix(policyID string) []byte {
	return []byte(chunkPolicyIndex + ":" + policyID + ":")
}

// makePolicyRecordKey generates the primary key for a policy's display
// metadata record: policyrec:<policyID>
func makePolicyRecordKey(policyID string) []byte {
	return []byte(policyRecordPrefix + ":" + policyID)
}
