package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"podatkobot/internal/models"

	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for dataset formats other than json/csv.
var ErrUnsupportedFormat = fmt.Errorf("unsupported dataset format")

// DatasetService turns extracted documents into annotated retrieval chunks
// and round-trips them through dataset files.
type DatasetService struct {
	tokenizer *TokenizerService
	logger    *zap.Logger
}

func NewDatasetService(tokenizer *TokenizerService, logger *zap.Logger) *DatasetService {
	return &DatasetService{
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// BuildDataset chunks every document and annotates each chunk with structure
// re-derived from the chunk's own text plus document-level metadata.
// Documents are processed in parallel; chunk order within a document is the
// sentence order.
func (s *DatasetService) BuildDataset(docs []*models.RawDocument, chunkSize, overlap int) []models.Chunk {
	perDoc := make([][]models.Chunk, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc *models.RawDocument) {
			defer wg.Done()
			perDoc[i] = s.chunkDocument(doc, chunkSize, overlap)
		}(i, doc)
	}
	wg.Wait()

	var dataset []models.Chunk
	for i := range perDoc {
		dataset = append(dataset, perDoc[i]...)
	}

	s.logger.Info("Dataset built",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(dataset)),
	)
	return dataset
}

func (s *DatasetService) chunkDocument(doc *models.RawDocument, chunkSize, overlap int) []models.Chunk {
	raw := s.tokenizer.TokenizeText(doc.Text, chunkSize, overlap)

	chunks := make([]models.Chunk, 0, len(raw))
	for _, tc := range raw {
		chunks = append(chunks, models.Chunk{
			Text:       tc.Text,
			SourceFile: doc.Filename,
			Length:     tc.Length,
			Structure:  s.annotate(tc.Text, doc.PageDetails),
			DocumentMetadata: models.DocumentMetadata{
				TotalPages:   doc.TotalPages,
				DocumentPath: doc.Path,
			},
		})
	}
	return chunks
}

// annotate re-derives structure from the chunk text. When the text carries no
// page header of its own, the page is attributed by looking for the chunk's
// first 100 characters inside a page preview. Best effort: a miss falls back
// to page 1, never an error.
func (s *DatasetService) annotate(text string, pages []models.PageDetail) models.StructureInfo {
	info := ExtractStructure(text)
	if info.Page == nil {
		page := findPageNumber(text, pages)
		info.Page = &page
	}
	return info
}

func findPageNumber(chunkText string, pages []models.PageDetail) int {
	prefix := truncateRunes(chunkText, 100)
	for _, page := range pages {
		if strings.Contains(page.TextPreview, prefix) {
			return page.PageNumber
		}
	}
	return 1
}

// SaveDataset writes the chunks to basePath/filename.<format> for each
// requested format. Supported formats: json, csv.
func (s *DatasetService) SaveDataset(dataset []models.Chunk, formats []string, basePath, filename string) error {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return fmt.Errorf("create dataset directory: %w", err)
	}

	for _, format := range formats {
		path := filepath.Join(basePath, filename+"."+format)

		var err error
		switch format {
		case "json":
			err = saveJSON(dataset, path)
		case "csv":
			err = saveCSV(dataset, path)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
		}
		if err != nil {
			return err
		}

		s.logger.Info("Saved dataset",
			zap.String("format", format),
			zap.String("path", path),
		)
	}
	return nil
}

// LoadDataset reads a dataset file written by SaveDataset. Serialized sets
// come back as ordered slices; callers must treat them as sets.
func (s *DatasetService) LoadDataset(path, fileType string) ([]models.Chunk, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dataset not found at %s: %w", path, err)
	}

	switch fileType {
	case "json":
		return loadJSON(path)
	case "csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}
}

func saveJSON(dataset []models.Chunk, path string) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

func loadJSON(path string) ([]models.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var dataset []models.Chunk
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return dataset, nil
}

var csvHeader = []string{"text", "source_file", "length", "structure", "document_metadata"}

func saveCSV(dataset []models.Chunk, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, chunk := range dataset {
		structure, err := json.Marshal(chunk.Structure)
		if err != nil {
			return err
		}
		meta, err := json.Marshal(chunk.DocumentMetadata)
		if err != nil {
			return err
		}
		record := []string{
			chunk.Text,
			chunk.SourceFile,
			strconv.Itoa(chunk.Length),
			string(structure),
			string(meta),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func loadCSV(path string) ([]models.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var dataset []models.Chunk
	for _, record := range records[1:] {
		if len(record) != len(csvHeader) {
			return nil, fmt.Errorf("malformed dataset record: %d columns", len(record))
		}
		length, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("parse chunk length: %w", err)
		}
		chunk := models.Chunk{
			Text:       record[0],
			SourceFile: record[1],
			Length:     length,
		}
		if err := json.Unmarshal([]byte(record[3]), &chunk.Structure); err != nil {
			return nil, fmt.Errorf("parse chunk structure: %w", err)
		}
		if err := json.Unmarshal([]byte(record[4]), &chunk.DocumentMetadata); err != nil {
			return nil, fmt.Errorf("parse chunk metadata: %w", err)
		}
		dataset = append(dataset, chunk)
	}
	return dataset, nil
}
