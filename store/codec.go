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

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/poiesic/guardrail/core"
)

// chunkRecord is the gob-serializable shape of a stored chunk. A
// separate type from core.Chunk keeps the wire format independent of
// the domain type's exported fields changing shape over time.
type chunkRecord struct {
	Id           core.ID
	PolicyID     string
	Text         string
	Kind         core.Kind
	PageNumber   int
	SectionTitle string
	Position     int
	Embedding    []float32
	CreatedAtUTC int64 // Unix nanoseconds
}

// MarshalChunk encodes a chunk for storage.
func MarshalChunk(c *core.Chunk) ([]byte, error) {
	rec := chunkRecord{
		Id:           c.Id,
		PolicyID:     c.PolicyID,
		Text:         c.Text,
		Kind:         c.Kind,
		PageNumber:   c.PageNumber,
		SectionTitle: c.SectionTitle,
		Position:     c.Position,
		Embedding:    c.Embedding,
		CreatedAtUTC: c.CreatedAt.UnixNano(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalChunk decodes a chunk previously encoded by MarshalChunk.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var rec chunkRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &core.Chunk{
		Id:           rec.Id,
		PolicyID:     rec.PolicyID,
		Text:         rec.Text,
		Kind:         rec.Kind,
		PageNumber:   rec.PageNumber,
		SectionTitle: rec.SectionTitle,
		Position:     rec.Position,
		Embedding:    rec.Embedding,
		CreatedAt:    unixNanoUTC(rec.CreatedAtUTC),
	}, nil
}

func unixNanoUTC(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}

// MarshalIndexEntry packs the id and kind carried by a secondary
// index value so Count can filter by kind without reading the full
// record.
func MarshalIndexEntry(id core.ID, kind core.Kind) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf, uint64(id))
	buf[8] = byte(kind)
	return buf
}

// UnmarshalIndexEntry reverses MarshalIndexEntry.
func UnmarshalIndexEntry(data []byte) (core.ID, core.Kind, error) {
	if len(data) != 9 {
		return 0, core.KindUnspecified, fmt.Errorf("%w: index entry has %d bytes, want 9", ErrSerializationFailed, len(data))
	}
	id := core.ID(binary.BigEndian.Uint64(data))
	return id, core.Kind(data[8]), nil
}

// policyRecord is the gob-serializable shape of a stored PolicyRecord.
type policyRecord struct {
	PolicyID     string
	DisplayName  string
	Owner        string
	CreatedAtUTC int64
}

// MarshalPolicyRecord encodes a policy record for storage.
func MarshalPolicyRecord(p *core.PolicyRecord) ([]byte, error) {
	rec := policyRecord{
		PolicyID:     p.PolicyID,
		DisplayName:  p.DisplayName,
		Owner:        p.Owner,
		CreatedAtUTC: p.CreatedAt.UnixNano(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return buf.Bytes(), nil
}

// UnmarshalPolicyRecord decodes a policy record previously encoded by
// MarshalPolicyRecord.
func UnmarshalPolicyRecord(data []byte) (*core.PolicyRecord, error) {
	var rec policyRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &core.PolicyRecord{
		PolicyID:    rec.PolicyID,
		DisplayName: rec.DisplayName,
		Owner:       rec.Owner,
		CreatedAt:   unixNanoUTC(rec.CreatedAtUTC),
	}, nil
}
