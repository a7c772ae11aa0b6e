package service

import (
	"regexp"
	"strings"
)

var (
	newlineRuns  = regexp.MustCompile(`\n+`)
	sentenceEnds = regexp.MustCompile(`[.!?]+\s+`)
	wordRuns     = regexp.MustCompile(`[\p{L}\p{N}_]+`)

	// Cyrillic abbreviation boundary. Reserved for future sentence splitting
	// refinements, not consulted by SplitSentences.
	abbreviationRun = regexp.MustCompile(`[а-яА-ЯіІїЇєЄ]\.`)
)

// TextChunk is one tokenizer output unit: joined sentences and their word count.
type TextChunk struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// TokenizerService splits raw text into sentences and packs them into
// overlapping chunks bounded by word count.
type TokenizerService struct{}

func NewTokenizerService() *TokenizerService {
	return &TokenizerService{}
}

// SplitSentences collapses newlines to spaces and splits on runs of
// sentence-terminator punctuation followed by whitespace. Returned sentences
// are trimmed, non-empty and in original order.
func (t *TokenizerService) SplitSentences(text string) []string {
	text = newlineRuns.ReplaceAllString(text, " ")
	text = sentenceEnds.ReplaceAllString(text, "\n")

	var sentences []string
	for _, s := range strings.Split(text, "\n") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// SplitWords returns the word-boundary tokens of text (Unicode letter/digit runs).
func (t *TokenizerService) SplitWords(text string) []string {
	return wordRuns.FindAllString(text, -1)
}

// TokenizeText packs sentences greedily into chunks of at most maxChunkSize
// words. When a chunk is flushed, the next chunk is seeded with the longest
// suffix of its sentences whose cumulative word count stays within overlap;
// the sentence that would exceed the budget is excluded whole. A single
// sentence longer than maxChunkSize is still emitted whole, so chunks may
// exceed the nominal bound.
func (t *TokenizerService) TokenizeText(text string, maxChunkSize, overlap int) []TextChunk {
	sentences := t.SplitSentences(text)

	var chunks []TextChunk
	var current []string
	currentLength := 0

	for _, sentence := range sentences {
		sentenceLength := len(t.SplitWords(sentence))

		if currentLength+sentenceLength > maxChunkSize && len(current) > 0 {
			chunks = append(chunks, TextChunk{
				Text:   strings.Join(current, " "),
				Length: currentLength,
			})

			var overlapSentences []string
			overlapLength := 0
			for i := len(current) - 1; i >= 0; i-- {
				n := len(t.SplitWords(current[i]))
				if overlapLength+n > overlap {
					break
				}
				overlapSentences = append([]string{current[i]}, overlapSentences...)
				overlapLength += n
			}

			current = overlapSentences
			currentLength = overlapLength
		}

		current = append(current, sentence)
		currentLength += sentenceLength
	}

	if len(current) > 0 {
		chunks = append(chunks, TextChunk{
			Text:   strings.Join(current, " "),
			Length: currentLength,
		})
	}

	return chunks
}
