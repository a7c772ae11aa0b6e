package service

import (
	"regexp"
	"strings"

	"podatkobot/internal/models"
)

type greetingPattern struct {
	re         *regexp.Regexp
	confidence float64
}

// Greeting patterns are an ordered list: the first match wins.
var greetingPatterns = []greetingPattern{
	{regexp.MustCompile(`^добр(ий|ого)\s*(ранку|ранок|день|дня|вечір|вечора)`), 0.9},
	{regexp.MustCompile(`^віта[ю|ння]`), 0.9},
	{regexp.MustCompile(`^прив[і|e]т`), 0.9},
	{regexp.MustCompile(`^здрастуй(те)?`), 0.9},
	{regexp.MustCompile(`^хай$`), 0.8},
	{regexp.MustCompile(`^hi$`), 0.8},
	{regexp.MustCompile(`^hello$`), 0.8},
}

// Weighted keyword tables. Order does not matter: every matched keyword's
// weight is summed and the total clamped to 1.0.
var systemQueryKeywords = map[string]float64{
	"асистент":     0.6,
	"помічник":     0.6,
	"бот":          0.6,
	"модель":       0.6,
	"працюєш":      0.7,
	"функціонуєш":  0.7,
	"влаштований":  0.7,
	"можливості":   0.6,
}

var taxKeywords = map[string]float64{
	"податок":     0.8,
	"фоп":         0.9,
	"тов":         0.9,
	"єсв":         0.9,
	"пдфо":        0.9,
	"звітність":   0.8,
	"декларація":  0.8,
	"платник":     0.7,
	"реєстрація":  0.7,
	"підприємець": 0.8,
	"зарплата":    0.7,
	"податки":     0.8,
	"резидент":    0.8,
}

const keywordThreshold = 0.6

// QueryAnalyzer classifies user queries into intents via greeting patterns
// and weighted keyword scoring.
type QueryAnalyzer struct{}

func NewQueryAnalyzer() *QueryAnalyzer {
	return &QueryAnalyzer{}
}

// Analyze lower-cases and trims the query, tries the greeting patterns in
// order, then scores the system and tax keyword tables. System queries are
// checked first and win ties at the threshold. Anything below threshold is
// irrelevant with fixed confidence 0.7.
func (a *QueryAnalyzer) Analyze(text string) models.QueryAnalysisResult {
	text = strings.TrimSpace(strings.ToLower(text))

	for _, p := range greetingPatterns {
		if p.re.MatchString(text) {
			return models.QueryAnalysisResult{
				QueryType:  models.QueryTypeGreeting,
				Confidence: p.confidence,
				Details:    map[string]any{"pattern": p.re.String()},
			}
		}
	}

	systemConfidence, systemMatches := scoreKeywords(text, systemQueryKeywords)
	taxConfidence, taxMatches := scoreKeywords(text, taxKeywords)

	if systemConfidence > keywordThreshold {
		return models.QueryAnalysisResult{
			QueryType:  models.QueryTypeSystemQuery,
			Confidence: systemConfidence,
			Details:    map[string]any{"matched_keywords": systemMatches},
		}
	}
	if taxConfidence > keywordThreshold {
		return models.QueryAnalysisResult{
			QueryType:  models.QueryTypeTaxQuery,
			Confidence: taxConfidence,
			Details:    map[string]any{"matched_keywords": taxMatches},
		}
	}

	return models.QueryAnalysisResult{
		QueryType:  models.QueryTypeIrrelevant,
		Confidence: 0.7,
		Details:    map[string]any{"reason": "No relevant keywords found"},
	}
}

func scoreKeywords(text string, table map[string]float64) (float64, []string) {
	var confidence float64
	var matches []string
	for keyword, weight := range table {
		if strings.Contains(text, keyword) {
			confidence += weight
			matches = append(matches, keyword)
		}
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence, matches
}
