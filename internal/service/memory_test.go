package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationMemoryWindow(t *testing.T) {
	memory := NewConversationMemory(3)
	for i := 1; i <= 5; i++ {
		memory.Append(fmt.Sprintf("питання %d", i), fmt.Sprintf("відповідь %d", i))
	}

	turns := memory.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "питання 3", turns[0].Question)
	assert.Equal(t, "питання 5", turns[2].Question)
}

func TestConversationMemoryHistoryFormat(t *testing.T) {
	memory := NewConversationMemory(5)
	memory.Append("Скільки груп ФОП існує?", "Чотири групи.")

	assert.Equal(t, "Питання: Скільки груп ФОП існує?\nВідповідь: Чотири групи.\n", memory.History())
}

func TestConversationMemoryEmptyHistory(t *testing.T) {
	memory := NewConversationMemory(5)
	assert.Empty(t, memory.History())
	assert.Empty(t, memory.Turns())
}

func TestMemoryStoreReusesAndDrops(t *testing.T) {
	store := newMemoryStore(5)

	first := store.get("s1")
	first.Append("питання", "відповідь")
	assert.Same(t, first, store.get("s1"))

	other := store.get("s2")
	assert.Empty(t, other.Turns(), "sessions must not share history")

	store.drop("s1")
	assert.Empty(t, store.get("s1").Turns())
}
