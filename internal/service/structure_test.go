package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStructureArticles(t *testing.T) {
	text := "Згідно зі Стаття 167 та Стаття 14, а також повторно Стаття 167 кодексу."

	info := ExtractStructure(text)
	assert.Equal(t, []string{"Стаття 14", "Стаття 167"}, info.Articles)
}

func TestExtractStructurePoints(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "two to four groups",
			text: "Відповідно до п. 12.3 та пп. 12.3.1, а також 12.3.1.4 кодексу",
			want: []string{"12.3", "12.3.1", "12.3.1.4"},
		},
		{
			name: "deduplicated",
			text: "пункт 167.1 і ще раз пункт 167.1",
			want: []string{"167.1"},
		},
		{
			name: "plain integers are not points",
			text: "Стаття 167 без пунктів",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ExtractStructure(tt.text)
			assert.Equal(t, tt.want, info.Points)
		})
	}
}

// The annotator orders points lexicographically as strings. The citation
// formatter orders them numerically; see TestFormatSourcesPointOrdering.
func TestExtractStructurePointsSortedLexicographically(t *testing.T) {
	info := ExtractStructure("пункти 2.1, 10.2 та 12.3")
	assert.Equal(t, []string{"10.2", "12.3", "2.1"}, info.Points)
}

func TestExtractStructurePageHeader(t *testing.T) {
	info := ExtractStructure(`Газета "Все про бухгалтерський облік" 17 gazeta.vobu.ua Стаття 1`)
	require.NotNil(t, info.Page)
	assert.Equal(t, 17, *info.Page)

	info = ExtractStructure("звичайний текст без колонтитула")
	assert.Nil(t, info.Page)
}

func TestExtractStructureSectionAndChapter(t *testing.T) {
	info := ExtractStructure("Розділ IV Податок на доходи фізичних осіб Глава 1 Загальні положення")
	assert.Contains(t, info.Section, "Розділ IV")
	assert.Contains(t, info.Chapter, "Глава 1")
}

func TestExtractStructureIsPure(t *testing.T) {
	text := `Стаття 291. Пункт 291.4 та 291.4.1. Газета "Все про бухгалтерський облік" 3 gazeta.vobu.ua`

	first := ExtractStructure(text)
	second := ExtractStructure(text)
	assert.Equal(t, first, second, "same input must always yield identical structure")
}
