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


package guardrail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/guardrail/airag"
	"github.com/poiesic/guardrail/airag/fake"
)

// A fake provider cannot be wired through New (New always constructs an
// openai.Provider), so these tests exercise construction and lifecycle
// wiring only; coverage of the agent/orchestrator behaviors themselves
// lives in agent_test.go and orchestrator_test.go against fake.NewProvider.
var _ = fake.NewProvider

func TestNew_CreatesGuardrail(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "test_db")

	g, err := New(tmpDir, WithAIRAGConfig(testAIRAGConfig()))
	require.NoError(t, err)
	require.NotNil(t, g)
	defer g.Close()

	assert.NotNil(t, g.ChunkStore())
	assert.NotNil(t, g.Agent())
	assert.NotNil(t, g.Orchestrator())
	assert.NotNil(t, g.backend)
	assert.NotNil(t, g.logger)
}

func TestNew_ErrorWithInvalidPath(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
	require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

	g, err := New(tmpFile, WithAIRAGConfig(testAIRAGConfig()))
	assert.Error(t, err)
	assert.Nil(t, g)
}

func TestGuardrail_Close(t *testing.T) {
	tmpDir := t.TempDir()
	g, err := New(tmpDir, WithAIRAGConfig(testAIRAGConfig()))
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.NoError(t, g.Close())
}

func TestGuardrail_NewIngestionPipeline(t *testing.T) {
	tmpDir := t.TempDir()
	g, err := New(tmpDir, WithAIRAGConfig(testAIRAGConfig()))
	require.NoError(t, err)
	require.NotNil(t, g)
	defer g.Close()

	pipeline, err := g.NewIngestionPipeline()
	require.NoError(t, err)
	require.NotNil(t, pipeline)
	pipeline.Release()
}

// testAIRAGConfig points the openai-compatible provider at a
// placeholder local host. Provider construction only validates and
// normalizes the config; it never dials the host, so these tests
// never make a network call.
func testAIRAGConfig() *airag.Config {
	return airag.NewConfig(
		airag.WithHost("http://localhost:11434/v1"),
		airag.WithEmbeddingModel("test-embedding-model"),
		airag.WithChatModel("test-chat-model"),
		airag.WithEmbeddingDim(384),
	)
}
