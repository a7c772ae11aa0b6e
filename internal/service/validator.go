package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"podatkobot/internal/models"
)

var (
	legalReference  = regexp.MustCompile(`\d+\.\d+(\.\d+)*`)
	degenerateRuns  = regexp.MustCompile(`(\d+\.){7,}`)
	digitsDotsOnly  = regexp.MustCompile(`^[I\d.]+$`)
	cyrillicLetters = regexp.MustCompile(`[а-яА-ЯіІїЇєЄґҐ]`)
	latinRuns       = regexp.MustCompile(`[A-Za-z\s]{30,}`)
)

// ValidateFunc is the quality gate applied to a finished answer.
type ValidateFunc func(response string) models.ValidationResult

// ValidateResponse runs the battery of heuristic checks that reject
// degenerate, garbled or non-grounded model output. An empty response and a
// response with too few distinct meaningful words short-circuit; every other
// matching check appends its own reason, so Errors may hold several.
func ValidateResponse(response string) models.ValidationResult {
	if response == "" {
		return models.ValidationResult{
			IsValid: false,
			Errors:  []string{"відповідь порожня"},
		}
	}

	var errs []string
	words := strings.Fields(strings.ToLower(response))

	uniqueWords := make(map[string]struct{})
	for _, word := range words {
		if utf8.RuneCountInString(word) > 2 {
			uniqueWords[word] = struct{}{}
		}
	}
	if len(uniqueWords) < 5 {
		return models.ValidationResult{
			IsValid: false,
			Errors:  []string{"відповідь занадто коротка або беззмістовна"},
		}
	}

	consecutiveRepeats := 0
	previousWord := ""
	for _, word := range words {
		if word == previousWord && utf8.RuneCountInString(word) > 2 {
			consecutiveRepeats++
			if consecutiveRepeats > 5 {
				errs = append(errs, "слово повторюється кілька разів поспіль")
				break
			}
		} else {
			consecutiveRepeats = 0
		}
		previousWord = word
	}

	wordCounts := make(map[string]int)
	limit := float64(len(words)) * 0.15
	for _, word := range words {
		wordCounts[word]++
		if float64(wordCounts[word]) > limit {
			errs = append(errs, "одне слово складає завелику частку відповіді")
			break
		}
	}

	masked := legalReference.ReplaceAllString(response, "LEGAL_REF")
	if degenerateRuns.MatchString(masked) {
		errs = append(errs, "відповідь містить вироджену числову послідовність")
	}

	digits := 0
	for _, r := range response {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if float64(digits) > float64(utf8.RuneCountInString(response))*0.5 {
		errs = append(errs, "відповідь складається переважно з цифр")
	}

	if digitsDotsOnly.MatchString(strings.TrimSpace(response)) {
		errs = append(errs, "відповідь не містить тексту")
	}

	if !cyrillicLetters.MatchString(response) {
		errs = append(errs, "відповідь не містить українського тексту")
	}

	if hasRepeatedWordRun(response, 10) {
		errs = append(errs, "відповідь містить незв'язне повторення слова")
	} else if latinRuns.MatchString(response) {
		errs = append(errs, "відповідь містить довгу латинську послідовність")
	}

	return models.ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// hasRepeatedWordRun reports whether some word token repeats more than
// minRepeats times in a row with only whitespace between occurrences.
func hasRepeatedWordRun(text string, minRepeats int) bool {
	indices := wordRuns.FindAllStringIndex(text, -1)
	repeats := 0
	prevWord := ""
	prevEnd := -1

	for _, idx := range indices {
		word := text[idx[0]:idx[1]]
		adjacent := prevEnd >= 0 && strings.TrimSpace(text[prevEnd:idx[0]]) == ""
		if adjacent && word == prevWord {
			repeats++
			if repeats >= minRepeats {
				return true
			}
		} else {
			repeats = 0
		}
		prevWord = word
		prevEnd = idx[1]
	}
	return false
}
