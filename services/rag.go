package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aqar-chatbot/config"
	"aqar-chatbot/models"
)

var voyageAPIKey string
var voyageModel string
var ragChunkCount = 3

// InitRAG stores the embedding credentials for the knowledge base.
func InitRAG(cfg *config.Config) {
	voyageAPIKey = cfg.VoyageAPIKey
	voyageModel = cfg.VoyageModel
	if cfg.RAGChunkCount > 0 {
		ragChunkCount = cfg.RAGChunkCount
	}
}

// scoredDocument pairs a knowledge chunk with its similarity to the query.
type scoredDocument struct {
	doc   models.KnowledgeDocument
	score float64
}

// StoreKnowledge chunks a document, embeds the chunks and writes them to the
// knowledge base. Existing chunks of the same source are replaced.
func StoreKnowledge(ctx context.Context, source, content string) (int, error) {
	if database == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	chunks := ChunkText(content, 800, 100)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document produced no chunks")
	}

	embeddings, err := GetVoyageEmbeddings(ctx, chunks, voyageAPIKey, voyageModel)
	if err != nil {
		return 0, fmt.Errorf("failed to embed document: %w", err)
	}

	collection := database.Collection("knowledge_documents")

	// Replace any previous version of this source.
	if _, err := collection.DeleteMany(ctx, bson.M{"source": source}); err != nil {
		return 0, err
	}

	docs := make([]interface{}, 0, len(chunks))
	for i, chunk := range chunks {
		var emb []float64
		if i < len(embeddings) {
			emb = embeddings[i]
		}
		docs = append(docs, models.KnowledgeDocument{
			Source:    source,
			ChunkID:   i,
			Content:   chunk,
			Embedding: emb,
			CreatedAt: time.Now(),
		})
	}

	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	slog.Info("Stored knowledge document", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// ListKnowledgeSources returns the distinct document sources in the base.
func ListKnowledgeSources(ctx context.Context) ([]string, error) {
	if database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	collection := database.Collection("knowledge_documents")
	raw, err := collection.Distinct(ctx, "source", bson.M{})
	if err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			sources = append(sources, s)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// SearchKnowledge retrieves the most similar chunks for a query, falling
// back to keyword matching when embeddings are unavailable.
func SearchKnowledge(ctx context.Context, query string, topK int) ([]models.KnowledgeDocument, error) {
	if database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if topK <= 0 {
		topK = ragChunkCount
	}

	collection := database.Collection("knowledge_documents")
	cursor, err := collection.Find(ctx, bson.M{}, options.Find())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.KnowledgeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	queryEmbeddings, err := GetVoyageEmbeddings(ctx, []string{query}, voyageAPIKey, voyageModel)
	if err != nil || len(queryEmbeddings) == 0 || len(queryEmbeddings[0]) == 0 {
		slog.Warn("Embedding query failed, using text match fallback", "error", err)
		return textMatchSearch(docs, query, topK), nil
	}
	queryVec := queryEmbeddings[0]

	scored := make([]scoredDocument, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			continue
		}
		scored = append(scored, scoredDocument{doc: doc, score: cosineSimilarity(queryVec, doc.Embedding)})
	}
	if len(scored) == 0 {
		return textMatchSearch(docs, query, topK), nil
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	results := make([]models.KnowledgeDocument, 0, topK)
	for i, s := range scored {
		if i >= topK {
			break
		}
		results = append(results, s.doc)
	}
	return results, nil
}

// textMatchSearch ranks chunks by shared word count with the query.
func textMatchSearch(docs []models.KnowledgeDocument, query string, topK int) []models.KnowledgeDocument {
	words := strings.Fields(strings.ToLower(query))
	scored := make([]scoredDocument, 0, len(docs))
	for _, doc := range docs {
		content := strings.ToLower(doc.Content)
		score := 0.0
		for _, w := range words {
			if len(w) < 3 {
				continue
			}
			if strings.Contains(content, w) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredDocument{doc: doc, score: score})
		}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	results := make([]models.KnowledgeDocument, 0, topK)
	for i, s := range scored {
		if i >= topK {
			break
		}
		results = append(results, s.doc)
	}
	return results
}

// cosineSimilarity between two vectors, zero for mismatched lengths.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ChunkText splits text into overlapping chunks along word boundaries.
func ChunkText(text string, chunkSize, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	// Approximate words per chunk from the character target.
	avgWord := 6
	wordsPerChunk := chunkSize / avgWord
	if wordsPerChunk < 1 {
		wordsPerChunk = 1
	}
	overlapWords := overlap / avgWord

	var chunks []string
	for start := 0; start < len(words); {
		end := start + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
		start = end - overlapWords
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

// normalizeMinWords gates query normalization: queries shorter than this
// carry too little context to fix safely and skip the LLM call.
const normalizeMinWords = 4

// NormalizeQuery fixes spelling ahead of retrieval without changing the
// language or intent. Short queries and failures keep the original query.
func NormalizeQuery(ctx context.Context, query, language string) string {
	if len(strings.Fields(query)) < normalizeMinWords {
		return query
	}

	var out struct {
		PreprocessedQuery string   `json:"preprocessed_query"`
		ChangesMade       []string `json:"changes_made"`
	}
	if err := GetLLMJSONResponse(ctx, config.BuildQueryNormalizationPrompt(query, language), &out); err != nil {
		return query
	}
	if strings.TrimSpace(out.PreprocessedQuery) == "" {
		return query
	}
	return out.PreprocessedQuery
}

// AnswerFromKnowledge runs the RAG path: normalize, retrieve, answer from
// context only.
func AnswerFromKnowledge(ctx context.Context, query, language string, session *SessionMemory) (string, error) {
	normalized := NormalizeQuery(ctx, query, language)

	docs, err := SearchKnowledge(ctx, normalized, ragChunkCount)
	if err != nil {
		return "", fmt.Errorf("knowledge search failed: %w", err)
	}

	var contextBuilder strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&contextBuilder, "[%d] (%s)\n%s\n\n", i+1, doc.Source, doc.Content)
	}
	ragContext := contextBuilder.String()
	if ragContext == "" {
		ragContext = "(no matching documents found)"
	}

	session.LastRAGResults = ragContext
	session.RAGAgentUsed = true

	answer, err := GetLLMResponse(ctx, config.BuildRAGAnswerPrompt(query, ragContext, language))
	if err != nil {
		return "", err
	}

	eval := EvaluateRAGResults(ctx, query, ragContext)
	session.LastRAGEval = map[string]interface{}{
		"orchestrator_correct": eval.OrchestratorCorrect,
		"results_relevant":     eval.ResultsRelevant,
		"content_quality":      eval.ContentQuality,
		"information_exists":   eval.InformationExists,
		"confidence":           eval.Confidence,
		"note":                 eval.Note,
	}

	return strings.TrimSpace(answer), nil
}

// EvaluateRAGResults judges retrieval quality. Failures degrade to a
// passing verdict.
func EvaluateRAGResults(ctx context.Context, query, ragResults string) models.RAGEvaluation {
	passing := models.RAGEvaluation{
		OrchestratorCorrect: true,
		ResultsRelevant:     true,
		ContentQuality:      true,
		InformationExists:   true,
		Confidence:          0.5,
	}
	var eval models.RAGEvaluation
	if err := GetLLMJSONResponse(ctx, config.BuildRAGEvaluationPrompt(query, truncate(ragResults, 3000)), &eval); err != nil {
		slog.Warn("RAG evaluation failed, accepting results", "error", err)
		return passing
	}
	return eval
}
