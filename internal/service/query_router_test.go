package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fixedRand struct{ value int }

func (r fixedRand) Intn(n int) int { return r.value % n }

type fakeAnswerer struct {
	answer    string
	calls     int
	lastQuery string
}

func (a *fakeAnswerer) Answer(_ context.Context, _ string, query string) string {
	a.calls++
	a.lastQuery = query
	return a.answer
}

func newTestRouter(assistant Answerer, rnd Rand) *QueryRouter {
	return NewQueryRouter(NewQueryAnalyzer(), assistant, rnd, zap.NewNop())
}

func TestHandleGreetingPicksByRand(t *testing.T) {
	for i := range GreetingResponses {
		router := newTestRouter(&fakeAnswerer{}, fixedRand{value: i})
		got := router.Handle(context.Background(), "s1", "Добрий день")
		assert.Equal(t, GreetingResponses[i], got)
	}
}

func TestHandleSystemQuery(t *testing.T) {
	assistant := &fakeAnswerer{}
	router := newTestRouter(assistant, fixedRand{})

	got := router.Handle(context.Background(), "s1", "Як ти працюєш?")

	assert.Equal(t, SystemQueryResponse, got)
	assert.Zero(t, assistant.calls, "canned responses must not hit the engine")
}

func TestHandleIrrelevantQuery(t *testing.T) {
	assistant := &fakeAnswerer{}
	router := newTestRouter(assistant, fixedRand{})

	got := router.Handle(context.Background(), "s1", "Яка столиця Франції?")

	assert.Equal(t, IrrelevantQueryResponse, got)
	assert.Zero(t, assistant.calls)
}

func TestHandleTaxQueryDelegates(t *testing.T) {
	assistant := &fakeAnswerer{answer: "відповідь по суті"}
	router := newTestRouter(assistant, fixedRand{})

	query := "Скільки податку сплачує ФОП 2 групи?"
	got := router.Handle(context.Background(), "s7", query)

	assert.Equal(t, "відповідь по суті", got)
	assert.Equal(t, 1, assistant.calls)
	assert.Equal(t, query, assistant.lastQuery)
}
