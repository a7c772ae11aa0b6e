package service

import (
	"regexp"
	"sort"
	"strconv"

	"podatkobot/internal/models"
)

var (
	articleRef = regexp.MustCompile(`Стаття (\d+)`)
	pointRef   = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?(?:\.(\d+))?`)
	sectionRef = regexp.MustCompile(`Розділ\s+[IVХ]+\.*\s*[^.]+`)
	chapterRef = regexp.MustCompile(`Глава\s+\d+[.\-]?\d*\.*\s*[^.]+`)

	// Boilerplate page header of the source publication.
	pageHeaderRef = regexp.MustCompile(`Газета\s+"Все\s+про\s+бухгалтерський\s+облік"\s+(\d+)\s+gazeta\.vobu\.ua`)
)

// ExtractStructure scans a span of text for legal-citation structure:
// article references, dotted point references (1-4 numeric groups), the
// publication's page-number header and section/chapter headings. It is pure:
// the same text always yields the same result. Points are sorted
// lexicographically as strings.
func ExtractStructure(text string) models.StructureInfo {
	articleSet := make(map[string]struct{})
	for _, m := range articleRef.FindAllStringSubmatch(text, -1) {
		articleSet["Стаття "+m[1]] = struct{}{}
	}

	pointSet := make(map[string]struct{})
	for _, m := range pointRef.FindAllStringSubmatch(text, -1) {
		point := m[1]
		for _, g := range m[2:] {
			if g != "" {
				point += "." + g
			}
		}
		pointSet[point] = struct{}{}
	}

	info := models.StructureInfo{
		Articles: sortedSet(articleSet),
		Points:   sortedSet(pointSet),
	}

	if m := pageHeaderRef.FindStringSubmatch(text); m != nil {
		if page, err := strconv.Atoi(m[1]); err == nil {
			info.Page = &page
		}
	}
	info.Section = sectionRef.FindString(text)
	info.Chapter = chapterRef.FindString(text)

	return info
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
