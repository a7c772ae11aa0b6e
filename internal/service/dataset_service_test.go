package service

import (
	"path/filepath"
	"strings"
	"testing"

	"podatkobot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDatasetService() *DatasetService {
	return NewDatasetService(NewTokenizerService(), zap.NewNop())
}

func testDocument() *models.RawDocument {
	pageOne := "Стаття 1 визначає загальні положення кодексу та основні терміни оподаткування. "
	pageTwo := "Стаття 2 пункт 2.1 встановлює ставки податку для платників єдиного податку. "

	return &models.RawDocument{
		Path:       "/data/tax_code.pdf",
		Filename:   "tax_code.pdf",
		Text:       pageOne + pageTwo,
		TotalPages: 2,
		PageDetails: []models.PageDetail{
			{PageNumber: 1, TextPreview: pageOne, Structure: ExtractStructure(pageOne)},
			{PageNumber: 2, TextPreview: pageTwo, Structure: ExtractStructure(pageTwo)},
		},
	}
}

func TestBuildDataset(t *testing.T) {
	svc := newTestDatasetService()
	doc := testDocument()

	chunks := svc.BuildDataset([]*models.RawDocument{doc}, 11, 0)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.Equal(t, "tax_code.pdf", chunk.SourceFile)
		assert.Equal(t, 2, chunk.DocumentMetadata.TotalPages)
		assert.Equal(t, "/data/tax_code.pdf", chunk.DocumentMetadata.DocumentPath)
		assert.Equal(t, len(NewTokenizerService().SplitWords(chunk.Text)), chunk.Length)
		// structure is re-derived from the chunk's own text
		assert.Equal(t, ExtractStructure(chunk.Text).Articles, chunk.Structure.Articles)
		require.NotNil(t, chunk.Structure.Page)
	}
}

func TestBuildDatasetPageAttribution(t *testing.T) {
	svc := newTestDatasetService()
	doc := testDocument()

	chunks := svc.BuildDataset([]*models.RawDocument{doc}, 11, 0)
	require.GreaterOrEqual(t, len(chunks), 2)

	// first chunk opens page 1, so its prefix is found in that page's preview
	assert.Equal(t, 1, *chunks[0].Structure.Page)

	// a chunk whose prefix appears in no preview falls back to page 1
	orphan := svc.BuildDataset([]*models.RawDocument{{
		Path:       "/data/other.pdf",
		Filename:   "other.pdf",
		Text:       "Це речення не з'являється в жодному попередньому перегляді сторінки.",
		TotalPages: 1,
		PageDetails: []models.PageDetail{
			{PageNumber: 7, TextPreview: "зовсім інший текст"},
		},
	}}, 100, 0)
	require.Len(t, orphan, 1)
	assert.Equal(t, 1, *orphan[0].Structure.Page)
}

func TestBuildDatasetPreservesDocumentOrder(t *testing.T) {
	svc := newTestDatasetService()

	var docs []*models.RawDocument
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		docs = append(docs, &models.RawDocument{
			Path:       "/data/" + name,
			Filename:   name,
			Text:       "Перше речення документа. Друге речення документа. Третє речення документа.",
			TotalPages: 1,
		})
	}

	chunks := svc.BuildDataset(docs, 4, 0)
	require.NotEmpty(t, chunks)

	var order []string
	for _, chunk := range chunks {
		if len(order) == 0 || order[len(order)-1] != chunk.SourceFile {
			order = append(order, chunk.SourceFile)
		}
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, order,
		"chunks must stay grouped per document in input order")
}

func TestDatasetRoundTrip(t *testing.T) {
	svc := newTestDatasetService()
	doc := testDocument()
	dataset := svc.BuildDataset([]*models.RawDocument{doc}, 11, 3)
	require.NotEmpty(t, dataset)

	dir := t.TempDir()
	require.NoError(t, svc.SaveDataset(dataset, []string{"json", "csv"}, dir, "tax_code"))

	for _, format := range []string{"json", "csv"} {
		t.Run(format, func(t *testing.T) {
			loaded, err := svc.LoadDataset(filepath.Join(dir, "tax_code."+format), format)
			require.NoError(t, err)
			require.Len(t, loaded, len(dataset))

			for i := range dataset {
				assert.Equal(t, dataset[i].Text, loaded[i].Text)
				assert.Equal(t, dataset[i].SourceFile, loaded[i].SourceFile)
				assert.Equal(t, dataset[i].Length, loaded[i].Length)
				assert.Equal(t, dataset[i].DocumentMetadata, loaded[i].DocumentMetadata)
				assert.Equal(t, dataset[i].Structure.Page, loaded[i].Structure.Page)
				// serialized sets may come back in any order
				assert.ElementsMatch(t, dataset[i].Structure.Articles, loaded[i].Structure.Articles)
				assert.ElementsMatch(t, dataset[i].Structure.Points, loaded[i].Structure.Points)
			}
		})
	}
}

func TestDatasetUnsupportedFormat(t *testing.T) {
	svc := newTestDatasetService()
	dir := t.TempDir()

	err := svc.SaveDataset([]models.Chunk{{Text: "текст"}}, []string{"parquet"}, dir, "ds")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = svc.LoadDataset(filepath.Join(dir, "missing.json"), "json")
	require.Error(t, err)
}

func TestFindPageNumberUsesFirst100Chars(t *testing.T) {
	long := strings.Repeat("а", 150)
	pages := []models.PageDetail{
		{PageNumber: 3, TextPreview: strings.Repeat("а", 120)},
	}
	// only the first 100 characters participate in the lookup
	assert.Equal(t, 3, findPageNumber(long, pages))
}
