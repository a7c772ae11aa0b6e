package dto

type QueryRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type QueryResponse struct {
	Answer   string         `json:"answer"`
	Sources  []string       `json:"sources"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type IngestRequest struct {
	Paths       []string `json:"paths"`
	DatasetName string   `json:"dataset_name,omitempty"`
}

type IngestResponse struct {
	ChunksIndexed int `json:"chunks_indexed"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	IndexedChunks int64  `json:"indexed_chunks"`
}
