package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"podatkobot/internal/models"
	"podatkobot/pkg/config"

	"go.uber.org/zap"
)

// NoContextResponse is the terminal answer when the index holds nothing
// relevant. It is a valid answer, not an error.
const NoContextResponse = "Не знайдено релевантної інформації для відповіді на це питання."

const truncationMarker = "..."

var (
	articleCiteRef = regexp.MustCompile(`[Сс]таття (\d+(?:\.\d+)*)`)
	pointCiteRef   = regexp.MustCompile(`(?:пункт[іу]?\s+)?(\d+(?:\.\d+)*)`)
)

// engine states of the validation-gated retry loop
type engineState int

const (
	stateRetrieve engineState = iota
	stateGenerate
	stateValidate
	stateSucceed
	stateExhausted
)

// AssistantService is the retrieval-generation engine: it retrieves context,
// generates a candidate answer with conversation history, appends citation
// sources, and accepts the answer only after it passes validation, retrying
// up to the configured attempt cap.
type AssistantService struct {
	retriever Retriever
	generator Generator
	validate  ValidateFunc
	memories  *memoryStore
	config    *config.RAGConfig
	logger    *zap.Logger
}

func NewAssistantService(retriever Retriever, generator Generator, cfg *config.RAGConfig, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		retriever: retriever,
		generator: generator,
		validate:  ValidateResponse,
		memories:  newMemoryStore(cfg.HistoryWindow),
		config:    cfg,
		logger:    logger,
	}
}

// WithValidator replaces the response quality gate. Used by tests.
func (s *AssistantService) WithValidator(validate ValidateFunc) *AssistantService {
	s.validate = validate
	return s
}

// EndSession clears the conversation memory owned by the session.
func (s *AssistantService) EndSession(sessionID string) {
	s.memories.drop(sessionID)
}

// Answer runs the engine for one query. Every outcome is a natural-language
// answer string; internal failures never escape as errors.
func (s *AssistantService) Answer(ctx context.Context, sessionID, query string) string {
	memory := s.memories.get(sessionID)

	var (
		attempt        int
		retrieved      []models.RetrievedContext
		response       string
		lastValidation models.ValidationResult
		lastErr        error
		hardFailure    bool
	)

	state := stateRetrieve
	for {
		switch state {
		case stateRetrieve:
			if attempt >= s.config.MaxRetries {
				state = stateExhausted
				continue
			}
			attempt++

			var err error
			retrieved, err = s.retriever.Search(ctx, query, s.config.TopK)
			if err != nil {
				s.logger.Error("Retrieval failed",
					zap.String("session_id", sessionID),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				lastErr, hardFailure = err, true
				continue
			}
			if len(retrieved) == 0 {
				return NoContextResponse
			}
			state = stateGenerate

		case stateGenerate:
			answer, err := s.generateOnce(ctx, query, retrieved, memory)
			if err != nil {
				s.logger.Error("Generation failed",
					zap.String("session_id", sessionID),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				lastErr, hardFailure = err, true
				state = stateRetrieve
				continue
			}

			response = answer + "\n\nДжерела:\n" + formatSources(retrieved)
			state = stateValidate

		case stateValidate:
			lastValidation = s.validate(response)
			if lastValidation.IsValid {
				state = stateSucceed
				continue
			}
			s.logger.Warn("Response rejected by validator",
				zap.String("session_id", sessionID),
				zap.Int("attempt", attempt),
				zap.Strings("reasons", lastValidation.Errors),
			)
			hardFailure = false
			state = stateRetrieve

		case stateSucceed:
			memory.Append(query, response)
			return response

		case stateExhausted:
			if hardFailure {
				return fmt.Sprintf("Виникла помилка при генерації відповіді: %v", lastErr)
			}
			return fmt.Sprintf(
				"Вибачте, але я не можу надати коректну відповідь на ваше запитання. Причини:\n%s\nБудь ласка, спробуйте переформулювати запитання.",
				strings.Join(lastValidation.Errors, "\n"),
			)
		}
	}
}

// generateOnce invokes the generation model once under the configured
// deadline. A timeout surfaces as a generation error for retry purposes.
func (s *AssistantService) generateOnce(ctx context.Context, query string, retrieved []models.RetrievedContext, memory *ConversationMemory) (string, error) {
	if s.config.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.GenerateTimeout)
		defer cancel()
	}

	return s.generator.Complete(ctx, PromptVars{
		Question:    query,
		Context:     s.assembleContext(retrieved),
		ChatHistory: memory.History(),
	})
}

// assembleContext concatenates the retrieved chunk texts and truncates the
// result to the generation model's input budget.
func (s *AssistantService) assembleContext(retrieved []models.RetrievedContext) string {
	parts := make([]string, 0, len(retrieved))
	for _, doc := range retrieved {
		parts = append(parts, doc.Content)
	}
	text := strings.Join(parts, "\n")

	runes := []rune(text)
	if len(runes) > s.config.ContextLimit {
		text = string(runes[:s.config.ContextLimit]) + truncationMarker
	}
	return text
}

type articleCitation struct {
	score  float64
	order  int
	points map[string]struct{}
}

// formatSources renders the citation block from the retrieved context.
// Articles are keyed by the ascending distance score of the first chunk they
// appeared in; at most 5 articles with at most 3 points each, points ordered
// numerically by dotted segments.
func formatSources(retrieved []models.RetrievedContext) string {
	sorted := make([]models.RetrievedContext, len(retrieved))
	copy(sorted, retrieved)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	articles := make(map[string]*articleCitation)
	for _, doc := range sorted {
		for _, m := range articleCiteRef.FindAllStringSubmatch(doc.Content, -1) {
			if _, ok := articles[m[1]]; !ok {
				articles[m[1]] = &articleCitation{
					score:  doc.Score,
					order:  len(articles),
					points: make(map[string]struct{}),
				}
			}
		}
		for _, m := range pointCiteRef.FindAllStringSubmatch(doc.Content, -1) {
			point := m[1]
			if !strings.Contains(point, ".") {
				continue
			}
			article := point[:strings.Index(point, ".")]
			if cite, ok := articles[article]; ok {
				cite.points[point] = struct{}{}
			}
		}
	}

	type entry struct {
		article string
		cite    *articleCitation
	}
	entries := make([]entry, 0, len(articles))
	for article, cite := range articles {
		entries = append(entries, entry{article, cite})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cite.score != entries[j].cite.score {
			return entries[i].cite.score < entries[j].cite.score
		}
		return entries[i].cite.order < entries[j].cite.order
	})
	if len(entries) > 5 {
		entries = entries[:5]
	}

	var sources []string
	for _, e := range entries {
		source := "Податковий кодекс України, Стаття " + e.article

		points := make([]string, 0, len(e.cite.points))
		for p := range e.cite.points {
			points = append(points, p)
		}
		sort.Slice(points, func(i, j int) bool { return lessPoints(points[i], points[j]) })
		if len(points) > 3 {
			points = points[:3]
		}
		if len(points) > 0 {
			source += ", пункти " + strings.Join(points, ", ")
		}
		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return "Податковий кодекс України"
	}
	return strings.Join(sources, "\n")
}

// lessPoints compares dotted point references numerically segment by segment.
func lessPoints(a, b string) bool {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		av, aerr := strconv.ParseFloat(as[i], 64)
		bv, berr := strconv.ParseFloat(bs[i], 64)
		if aerr != nil || berr != nil {
			if as[i] != bs[i] {
				return as[i] < bs[i]
			}
			continue
		}
		if av != bv {
			return av < bv
		}
	}
	return len(as) < len(bs)
}
