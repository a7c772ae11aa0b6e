package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"podatkobot/internal/models"

	pdflib "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ErrNoDocuments is returned when path normalization yields no PDF files.
var ErrNoDocuments = errors.New("no PDF files found")

var (
	dotLeaders     = regexp.MustCompile(`\.{3,}`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

const previewLength = 200

// PDFExtractor turns source PDF files into RawDocuments with per-page text
// and structure annotations.
type PDFExtractor struct {
	logger *zap.Logger
}

func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	return &PDFExtractor{logger: logger}
}

// NormalizePaths expands a list of paths into concrete PDF file paths.
// A directory entry selects every *.pdf inside it; missing paths are dropped.
func (e *PDFExtractor) NormalizePaths(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".pdf") {
					out = append(out, filepath.Join(path, entry.Name()))
				}
			}
		} else {
			out = append(out, path)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoDocuments
	}
	return out, nil
}

// Extract reads one PDF and produces a RawDocument: cleaned full text plus
// per-page previews and structure annotations.
func (e *PDFExtractor) Extract(path string) (*models.RawDocument, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var fullText strings.Builder
	var pageDetails []models.PageDetail

	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable page, keep going with the rest of the document.
			e.logger.Warn("Failed to read page",
				zap.String("path", path),
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			continue
		}

		cleaned := cleanText(pageText)
		fullText.WriteString(cleaned)
		fullText.WriteString("\n\n")

		pageDetails = append(pageDetails, models.PageDetail{
			PageNumber:  pageNum,
			TextPreview: truncateRunes(cleaned, previewLength),
			Structure:   ExtractStructure(cleaned),
		})
	}

	return &models.RawDocument{
		Path:        path,
		Filename:    filepath.Base(path),
		Text:        fullText.String(),
		TotalPages:  numPages,
		PageDetails: pageDetails,
	}, nil
}

// ExtractAll extracts every path in order. Per-file failures are logged and
// the file skipped; the batch only fails when no document survives.
func (e *PDFExtractor) ExtractAll(paths []string) ([]*models.RawDocument, error) {
	normalized, err := e.NormalizePaths(paths)
	if err != nil {
		return nil, err
	}

	var docs []*models.RawDocument
	for _, path := range normalized {
		doc, err := e.Extract(path)
		if err != nil {
			e.logger.Error("Error processing document",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// cleanText removes dot leaders and collapses whitespace runs.
func cleanText(text string) string {
	text = dotLeaders.ReplaceAllString(text, " ")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
