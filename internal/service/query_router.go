package service

import (
	"context"
	"math/rand"

	"podatkobot/internal/models"

	"go.uber.org/zap"
)

// GreetingResponses are the canned greetings one of which is picked at random.
var GreetingResponses = []string{
	"Вітаю! Чим можу допомогти з питань оподаткування?",
	"Доброго дня! Готовий допомогти вам з податковими питаннями.",
	"Вітаю! Я ваш податковий асистент. Яке у вас питання?",
}

// SystemQueryResponse describes the assistant's capabilities.
const SystemQueryResponse = `Я - спеціалізований асистент з податкового законодавства України.
Моя база знань включає:
- Податковий кодекс України
- Актуальні ставки податків
- Правила оподаткування для різних груп платників
- Терміни подання звітності

Я можу допомогти вам:
- Розрахувати податки
- Пояснити правила оподаткування
- Надати інформацію про терміни та звітність
- Відповісти на питання щодо ФОП та найманих працівників

Чим можу бути корисним?`

// IrrelevantQueryResponse is the fixed out-of-scope answer.
const IrrelevantQueryResponse = `Вибачте, але це питання виходить за межі моєї спеціалізації.
Я - податковий асистент і можу допомогти з питаннями щодо:
- Оподаткування та податкової звітності
- Реєстрації та ведення діяльності ФОП
- Розрахунку податків та зборів
- Термінів подання звітності

Будь ласка, задайте питання, пов'язане з цими темами.`

// Rand supplies the random choice for greetings. Tests substitute a
// fixed-sequence source.
type Rand interface {
	Intn(n int) int
}

// SystemRand adapts the process-wide math/rand source, which is safe for
// concurrent use.
type SystemRand struct{}

func (SystemRand) Intn(n int) int { return rand.Intn(n) }

// Answerer produces a grounded answer for a tax-domain query.
type Answerer interface {
	Answer(ctx context.Context, sessionID, query string) string
}

// QueryRouter dispatches classified queries to canned responses or to the
// retrieval-generation engine.
type QueryRouter struct {
	analyzer  *QueryAnalyzer
	assistant Answerer
	rand      Rand
	logger    *zap.Logger
}

func NewQueryRouter(analyzer *QueryAnalyzer, assistant Answerer, rand Rand, logger *zap.Logger) *QueryRouter {
	return &QueryRouter{
		analyzer:  analyzer,
		assistant: assistant,
		rand:      rand,
		logger:    logger,
	}
}

// Handle classifies the query and returns its answer.
func (r *QueryRouter) Handle(ctx context.Context, sessionID, query string) string {
	analysis := r.analyzer.Analyze(query)

	r.logger.Info("Query classified",
		zap.String("session_id", sessionID),
		zap.String("query_type", string(analysis.QueryType)),
		zap.Float64("confidence", analysis.Confidence),
	)

	switch analysis.QueryType {
	case models.QueryTypeGreeting:
		return GreetingResponses[r.rand.Intn(len(GreetingResponses))]
	case models.QueryTypeSystemQuery:
		return SystemQueryResponse
	case models.QueryTypeTaxQuery:
		return r.assistant.Answer(ctx, sessionID, query)
	default:
		return IrrelevantQueryResponse
	}
}
