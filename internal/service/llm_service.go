package service

import (
	"context"
	"fmt"
	"strings"

	"podatkobot/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// PromptVars are the variables bound into the generation prompt.
type PromptVars struct {
	Question    string
	Context     string
	ChatHistory string
}

// Generator is the black-box text completion collaborator.
type Generator interface {
	Complete(ctx context.Context, vars PromptVars) (string, error)
}

const answerPromptTemplate = `[INST] Ти - асистент з податкового законодавства України.
ВАЖЛИВО: Відповідай українською мовою за замовчуванням.
ВАЖЛИВО: Надавай тільки чітку, структуровану відповідь. Уникай повторень та незрозумілих послідовностей.

Історія чату:
{chat_history}

Використовуй наданий контекст для відповіді на питання.
Відповідай лише на основі контексту. Якщо не можеш знайти відповідь в контексті,
скажи що не знаєш.

Якщо в питанні є конкретні цифри, обов'язково зроби розрахунок та
покажи його покроково. Використовуй актуальні ставки податків.

1. Якщо в запиті не вистачає інформації:
    - Вкажи, яка саме інформація потрібна
    - Задай конкретні уточнюючі питання
    - Надай грунтовну відповідь на питання

2. При розрахунку податків:
    - Показуй розрахунок покроково
    - Вказуй формули розрахунку
    - Пояснюй кожен крок тільки якщо про це напишуть

3. Завжди вказуй:
    - Посилання на статті Податкового Кодексу України
    - Терміни сплати податків
    - Терміни подання звітності

4. Формат відповіді:
    - Якщо у запиті попросять відповідати юридичною (професійною) мовою то відповідай як професіональний юрист
    - Виділяй важливі цифри та дати

5. При відповіді на питання про ФОП:
    1. Обов'язково уточни групу ФОП
    2. Перевір ліміти доходу для групи
    3. Нагадай про ЄСВ
    4. Вкажи обмеження щодо видів діяльності
    5. Поясни різницю між групами якщо доречно

6. При відповіді на питання про найманих працівників:
    1. Враховуй базову ставку ПДФО
    2. Не забудь про військовий збір
    3. Перевір право на податкову соціальну пільгу
    4. Вкажи обов'язки роботодавця
    5. Нагадай про терміни виплати зарплати

Контекст: {context}

Питання: {question} [/INST]`

// LLMService is the GigaChat-backed generation collaborator.
type LLMService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	config *config.GigaChatConfig
	logger *zap.Logger
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.Temperature = cfg.Temperature

	return &LLMService{
		client: client,
		model:  model,
		config: cfg,
		logger: logger,
	}, nil
}

// Complete binds the prompt variables into the answer template and invokes
// the model once. Failures, including the deadline set by the caller, are
// returned as errors for the engine's retry loop.
func (s *LLMService) Complete(ctx context.Context, vars PromptVars) (string, error) {
	prompt := renderPrompt(answerPromptTemplate, vars)

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("Generation completed", zap.Int("answer_length", len(answer)))
	return answer, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

func renderPrompt(template string, vars PromptVars) string {
	r := strings.NewReplacer(
		"{question}", vars.Question,
		"{context}", vars.Context,
		"{chat_history}", vars.ChatHistory,
	)
	return r.Replace(template)
}
