package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAnswer = "Єдиний податок для ФОП другої групи сплачується щомісяця за фіксованою ставкою, " +
	"встановленою місцевою радою в межах двадцяти відсотків мінімальної заробітної плати."

func TestValidateResponseAccepts(t *testing.T) {
	result := ValidateResponse(validAnswer)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateResponseEmpty(t *testing.T) {
	result := ValidateResponse("")
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1, "empty response short-circuits with a single error")
}

func TestValidateResponseTooFewDistinctWords(t *testing.T) {
	result := ValidateResponse("Так, це воно і є")
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1, "too-short response short-circuits")
}

func TestValidateResponseDigitsOnly(t *testing.T) {
	result := ValidateResponse(strings.Repeat("8", 200))
	assert.False(t, result.IsValid)
}

func TestValidateResponseNoCyrillic(t *testing.T) {
	result := ValidateResponse("This response was generated entirely in the wrong language by mistake.")
	assert.False(t, result.IsValid)
}

func TestValidateResponseDigitRatio(t *testing.T) {
	// enough distinct words to pass the early checks, then mostly digits
	response := "Перелік значень ставки податку бюджету кодексу: " + strings.Repeat("123456789 ", 20)
	result := ValidateResponse(response)
	assert.False(t, result.IsValid)
}

func TestValidateResponseConsecutiveRepeats(t *testing.T) {
	response := validAnswer + " " + strings.Repeat("ставка ", 8)
	result := ValidateResponse(response)
	assert.False(t, result.IsValid)
}

func TestValidateResponseDominantWord(t *testing.T) {
	// one word well above 15% of the total word count
	filler := strings.Repeat("податок різне_а різне_б ", 5)
	result := ValidateResponse(validAnswer + " " + filler + strings.Repeat("податок ", 10))
	assert.False(t, result.IsValid)
}

func TestValidateResponseLegalReferencesAreMasked(t *testing.T) {
	// dotted legal references alone must not trip the degenerate-number check
	response := validAnswer + " Див. пункти 164.2.1 та 167.1.1 кодексу."
	result := ValidateResponse(response)
	assert.True(t, result.IsValid, "errors: %v", result.Errors)
}

func TestValidateResponseRepeatedWordRun(t *testing.T) {
	response := validAnswer + " " + strings.Repeat("так ", 15)
	result := ValidateResponse(response)
	assert.False(t, result.IsValid)
}

func TestValidateResponseGarbledLatinRun(t *testing.T) {
	response := validAnswer + " aaaaaaaaaa bbbbbbbbbb cccccccccc dddddddddd"
	result := ValidateResponse(response)
	assert.False(t, result.IsValid)
}

func TestValidateResponseAccumulatesReasons(t *testing.T) {
	// passes the short-circuiting checks, then fails several independent ones
	response := "Великий перелік чисел ставок податків зборів: " +
		strings.Repeat("123456789 ", 30) + " 1.2.3.4.5.6.7.8.9.10.11."
	result := ValidateResponse(response)
	assert.False(t, result.IsValid)
	assert.Greater(t, len(result.Errors), 1)
}
