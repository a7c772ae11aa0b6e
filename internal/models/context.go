package models

import "github.com/google/uuid"

// RetrievedContext is one nearest-neighbor hit from the vector index.
// Score is a distance: lower means more similar.
type RetrievedContext struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// IndexedChunk pairs a chunk with its embedding for upsert into the index.
type IndexedChunk struct {
	ID        uuid.UUID `json:"id"`
	Chunk     Chunk     `json:"chunk"`
	Embedding []float32 `json:"embedding"`
}
