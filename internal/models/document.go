package models

// StructureInfo carries the legal-citation structure found in a span of text.
// Articles and Points are deduplicated and sorted so two scans of the same
// text always produce identical values.
type StructureInfo struct {
	Articles []string `json:"articles"`
	Points   []string `json:"points"`
	Page     *int     `json:"page"`
	Section  string   `json:"section,omitempty"`
	Chapter  string   `json:"chapter,omitempty"`
}

// PageDetail describes a single extracted page of a source document.
type PageDetail struct {
	PageNumber  int           `json:"page_number"`
	TextPreview string        `json:"text_preview"`
	Structure   StructureInfo `json:"structure"`
}

// RawDocument is the output of PDF extraction for one source file.
// Immutable after creation.
type RawDocument struct {
	Path        string       `json:"path"`
	Filename    string       `json:"filename"`
	Text        string       `json:"text"`
	TotalPages  int          `json:"total_pages"`
	PageDetails []PageDetail `json:"page_details"`
}

// DocumentMetadata is the document-level metadata attached to every chunk.
type DocumentMetadata struct {
	TotalPages   int    `json:"total_pages"`
	DocumentPath string `json:"document_path"`
}

// Chunk is the unit of indexing and retrieval: a bounded, overlapping span
// of a document's sentences with its own re-derived structure.
type Chunk struct {
	Text             string           `json:"text"`
	SourceFile       string           `json:"source_file"`
	Length           int              `json:"length"`
	Structure        StructureInfo    `json:"structure"`
	DocumentMetadata DocumentMetadata `json:"document_metadata"`
}
