package core

import (
	"errors"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &Chunk{
				PolicyID:   "policy-1",
				Text:       "We do not insure intentional damage.",
				Kind:       KindExclusion,
				PageNumber: 8,
			},
			wantErr: nil,
		},
		{
			name: "valid chunk with empty embedding",
			chunk: &Chunk{
				PolicyID:   "policy-1",
				Text:       "Coverage includes pistons.",
				Kind:       KindInclusion,
				PageNumber: 3,
				Embedding:  nil,
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty policy id",
			chunk: &Chunk{
				Text:       "some text",
				Kind:       KindGeneral,
				PageNumber: 1,
			},
			wantErr: ErrEmptyPolicyID,
		},
		{
			name: "empty text",
			chunk: &Chunk{
				PolicyID:   "policy-1",
				Text:       "",
				Kind:       KindGeneral,
				PageNumber: 1,
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "invalid kind",
			chunk: &Chunk{
				PolicyID:   "policy-1",
				Text:       "some text",
				Kind:       KindUnspecified,
				PageNumber: 1,
			},
			wantErr: ErrInvalidKind,
		},
		{
			name: "non-positive page number",
			chunk: &Chunk{
				PolicyID:   "policy-1",
				Text:       "some text",
				Kind:       KindGeneral,
				PageNumber: 0,
			},
			wantErr: ErrInvalidPageNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Errorf("ValidateChunk() error = nil, want %v", tt.wantErr)
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbeddingDimension(t *testing.T) {
	if !ValidateEmbeddingDimension(make([]float32, 384), 384) {
		t.Error("expected matching dimension to validate")
	}
	if ValidateEmbeddingDimension(make([]float32, 384), 1536) {
		t.Error("expected mismatched dimension to fail validation")
	}
}
