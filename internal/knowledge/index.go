package knowledge

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Result is one semantic search hit. Score is a distance: LOWER means
// MORE relevant, matching the contract the dialog engine renders by.
type Result struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"`
}

// Index is one immutable generation of the vector index: a fully built
// qdrant collection plus the embedder that fills and queries it. Rebuilds
// create a new Index rather than mutating this one.
type Index struct {
	client     *qdrant.Client
	collection string
	embedder   *Embedder
}

// NewQdrantClient connects to qdrant's gRPC port, accepting URLs with or
// without scheme and port.
func NewQdrantClient(qdrantURL, apiKey string) (*qdrant.Client, error) {
	qdrantURL = strings.TrimPrefix(qdrantURL, "http://")
	qdrantURL = strings.TrimPrefix(qdrantURL, "https://")
	host := qdrantURL
	if idx := strings.Index(qdrantURL, ":"); idx != -1 {
		host = qdrantURL[:idx]
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   6334, // gRPC port
		APIKey: apiKey,
		UseTLS: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	return client, nil
}

// BuildIndex embeds every chunk and fills a fresh collection named after
// the base name plus a generation suffix. The collection only becomes
// visible to readers when the caller publishes the returned Index.
func BuildIndex(ctx context.Context, client *qdrant.Client, baseName string, embedder *Embedder, chunks []Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document produced no chunks")
	}

	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		vec, err := embedder.Embed(ctx, c.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		vectors[i] = vec
	}

	collection := fmt.Sprintf("%s-%d", baseName, time.Now().UnixNano())
	err := client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(len(vectors[0])),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: map[string]*qdrant.Value{
				"content":  qdrant.NewValueString(c.Content),
				"header_1": qdrant.NewValueString(c.Header1),
				"header_2": qdrant.NewValueString(c.Header2),
			},
		}
	}
	if _, err := client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           boolPtr(true),
	}); err != nil {
		return nil, fmt.Errorf("failed to upsert chunks: %w", err)
	}

	log.Printf("[Knowledge] Built index %s with %d chunks", collection, len(chunks))
	return &Index{client: client, collection: collection, embedder: embedder}, nil
}

// Search embeds the query and returns up to k hits sorted by ascending
// distance. Qdrant reports cosine similarity, so distance is 1-score.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	points, err := ix.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ix.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          uint64Ptr(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(points))
	for _, p := range points {
		results = append(results, Result{
			Content: getStringFromPayload(p.Payload, "content"),
			Metadata: map[string]string{
				"Header 1": getStringFromPayload(p.Payload, "header_1"),
				"Header 2": getStringFromPayload(p.Payload, "header_2"),
			},
			Score: 1 - float64(p.Score),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	return results, nil
}

// Drop removes this generation's collection. Called for a superseded
// index after a rebuild has been published.
func (ix *Index) Drop(ctx context.Context) {
	if err := ix.client.DeleteCollection(ctx, ix.collection); err != nil {
		log.Printf("[Knowledge] Failed to drop old collection %s: %v", ix.collection, err)
	}
}

func getStringFromPayload(payload map[string]*qdrant.Value, key string) string {
	if val, ok := payload[key]; ok {
		return val.GetStringValue()
	}
	return ""
}

func uint64Ptr(v uint64) *uint64 { return &v }
func boolPtr(v bool) *bool       { return &v }
