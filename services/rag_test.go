package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqar-chatbot/models"
)

func TestChunkTextSplitsWithOverlap(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	chunks := ChunkText(text, 300, 60)
	require.Greater(t, len(chunks), 1)

	// Every word survives chunking.
	total := 0
	for _, c := range chunks {
		total += len(strings.Fields(c))
	}
	assert.GreaterOrEqual(t, total, 200)
}

func TestChunkTextSmallInput(t *testing.T) {
	chunks := ChunkText("short document", 800, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short document", chunks[0])

	assert.Nil(t, ChunkText("", 800, 100))
	assert.Nil(t, ChunkText("   ", 800, 100))
}

func TestNormalizeQuerySkipsShortQueries(t *testing.T) {
	// Too few words to fix safely: returned verbatim, no LLM call.
	saved := llmConfig
	llmConfig = nil
	defer func() { llmConfig = saved }()

	assert.Equal(t, "palm hills", NormalizeQuery(context.Background(), "palm hills", "en"))
	assert.Equal(t, "سعر شقة", NormalizeQuery(context.Background(), "سعر شقة", "ar"))

	// Longer queries reach the model; with no client configured the
	// original text comes back unchanged.
	long := "what are the payment plans in palm hills october"
	assert.Equal(t, long, NormalizeQuery(context.Background(), long, "en"))
}

func TestCosineSimilarity(t *testing.T) {
	a := []float64{1, 0, 0}
	b := []float64{1, 0, 0}
	c := []float64{0, 1, 0}

	assert.InDelta(t, 1.0, cosineSimilarity(a, b), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity(a, c), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity(a, []float64{1, 2}), "length mismatch")
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity(a, []float64{0, 0, 0}), "zero vector")
}

func TestTextMatchSearch(t *testing.T) {
	docs := []models.KnowledgeDocument{
		{Source: "projects", ChunkID: 0, Content: "Palm Hills is a residential compound in New Cairo"},
		{Source: "projects", ChunkID: 1, Content: "The company offers flexible financing for all buyers"},
		{Source: "policy", ChunkID: 0, Content: "Refund policy applies within fourteen days"},
	}

	results := textMatchSearch(docs, "tell me about Palm Hills compound", 2)
	require.NotEmpty(t, results)
	assert.Equal(t, 0, results[0].ChunkID)
	assert.Equal(t, "projects", results[0].Source)

	// No shared words means no results.
	assert.Empty(t, textMatchSearch(docs, "zzz qqq", 2))
}

func TestGetMockEmbeddingsDeterministic(t *testing.T) {
	a := GetMockEmbeddings([]string{"hello", "world"})
	b := GetMockEmbeddings([]string{"hello", "world"})

	require.Len(t, a, 2)
	assert.Equal(t, a, b)
	assert.Len(t, a[0], 768)
}
