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


package core

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities, assigned by a storage
// sequence at insert time.
type ID uint64

// Kind is the classification tag assigned to a Chunk. The enum is closed:
// every switch over Kind must handle all six values. The store codec
// does not check the value it loads; IsValid reports whether it is one
// of the six.
type Kind int

const (
	// KindUnspecified is the zero value and never assigned to a stored chunk.
	KindUnspecified Kind = iota
	KindExclusion
	KindInclusion
	KindDefinition
	KindLimitation
	KindProcedure
	KindGeneral
)

// String renders a Kind using its canonical uppercase spelling.
func (k Kind) String() string {
	switch k {
	case KindExclusion:
		return "EXCLUSION"
	case KindInclusion:
		return "INCLUSION"
	case KindDefinition:
		return "DEFINITION"
	case KindLimitation:
		return "LIMITATION"
	case KindProcedure:
		return "PROCEDURE"
	case KindGeneral:
		return "GENERAL"
	default:
		return "UNSPECIFIED"
	}
}

// IsValid reports whether k is one of the six closed enum values.
func (k Kind) IsValid() bool {
	switch k {
	case KindExclusion, KindInclusion, KindDefinition, KindLimitation, KindProcedure, KindGeneral:
		return true
	default:
		return false
	}
}

// ParseKind maps a classifier or LLM answer string onto the closed enum.
// An unrecognized string returns (KindUnspecified, false) so callers can
// fall back to a heuristic prior instead of accepting an out-of-enum kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "EXCLUSION":
		return KindExclusion, true
	case "INCLUSION":
		return KindInclusion, true
	case "DEFINITION":
		return KindDefinition, true
	case "LIMITATION":
		return KindLimitation, true
	case "PROCEDURE":
		return KindProcedure, true
	case "GENERAL":
		return KindGeneral, true
	default:
		return KindUnspecified, false
	}
}

// KindSet is a small set of admissible kinds used as a retrieval filter.
type KindSet map[Kind]struct{}

// NewKindSet builds a KindSet from individual kinds.
func NewKindSet(kinds ...Kind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Contains reports whether k is a member of the set. A nil or empty set
// is treated as "no filter" by callers, not as "matches nothing" — see
// the kindFilter parameter of store.Store's Similar, Count and ListPolicy.
func (s KindSet) Contains(k Kind) bool {
	_, ok := s[k]
	return ok
}

// TextBlock is the unit the Text Extractor emits: a span of reading-order
// text tied to the page it came from, with an optional heading hint the
// extractor noticed in passing (e.g. a markdown header or an ALL-CAPS line).
type TextBlock struct {
	Text         string
	PageNumber   int
	SectionHint  string
}

// Chunk is the atomic unit of retrieval. Chunks are immutable once stored;
// a chunk's Id is assigned by the store at insert time, never by the caller.
type Chunk struct {
	Id            ID
	PolicyID      string
	Text          string
	Kind          Kind
	PageNumber    int
	SectionTitle  string
	Position      int
	Embedding     []float32
	CreatedAt     time.Time
}

// IDFromContent generates a deterministic ID from text content using
// BLAKE2b hashing, so identical content produces identical IDs. No code
// in this module calls it: chunk ids come from the store's sequence, and
// ingestion requires the caller to supply a policy_id.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PolicyRecord is the persisted display-metadata record for a policy.
// It is never consulted by the guardrail's reasoning; it exists purely
// for the external CRUD surface that manages policy metadata alongside
// the chunk store.
type PolicyRecord struct {
	PolicyID    string
	DisplayName string
	Owner       string
	CreatedAt   time.Time
}

// ScoredChunk pairs a retrieved chunk with its similarity score in [0,1].
// Higher scores mean more similar; scores from different queries are not
// comparable to each other.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// Status is the coverage verdict's outcome.
type Status int

const (
	StatusUnknown Status = iota
	StatusCovered
	StatusNotCovered
	StatusConditional
)

func (s Status) String() string {
	switch s {
	case StatusCovered:
		return "COVERED"
	case StatusNotCovered:
		return "NOT_COVERED"
	case StatusConditional:
		return "CONDITIONAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders Status as its string name rather than its
// underlying int, so the coverage-verdict JSON trailer's "status"
// field is stable across versions regardless of iota ordering.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses Status from its string enum form.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "COVERED":
		*s = StatusCovered
	case "NOT_COVERED":
		*s = StatusNotCovered
	case "CONDITIONAL":
		*s = StatusConditional
	default:
		*s = StatusUnknown
	}
	return nil
}

// Citation is a chunk reference attached to a verdict, carrying enough
// provenance for a reader to verify the claim against the source text.
type Citation struct {
	ChunkID      ID     `json:"chunk_id"`
	Page         int    `json:"page"`
	SectionTitle string `json:"section_title,omitempty"`
	Quote        string `json:"quote"`
}

// Financials is the optional monetary detail a FINANCIAL_PROBE may attach
// to a verdict. All fields are optional; a nil *Financials means the probe
// found nothing extractable.
type Financials struct {
	Deductible *float64 `json:"deductible,omitempty"`
	Cap        *float64 `json:"cap,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
}

// Verdict is the structured result of one coverage-guardrail turn.
type Verdict struct {
	Status     Status      `json:"status"`
	Item       string      `json:"item"`
	Reason     string      `json:"reason"`
	Confidence float32     `json:"confidence"`
	Citations  []Citation  `json:"citations"`
	Financials *Financials `json:"financials,omitempty"`
}
