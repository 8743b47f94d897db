package artist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_Add(t *testing.T) {
	l := NewList(3)

	assert.True(t, l.Add(Artist{ID: "a", Name: "A"}))
	assert.False(t, l.Add(Artist{ID: "a", Name: "A again"}), "duplicate id")
	assert.False(t, l.Add(Artist{Name: "no id"}), "empty id")
	assert.True(t, l.Add(Artist{ID: "b", Name: "B"}))
	assert.True(t, l.Add(Artist{ID: "c", Name: "C"}))
	assert.True(t, l.Full())
	assert.False(t, l.Add(Artist{ID: "d", Name: "D"}), "list is full")

	items := l.Items()
	assert.Len(t, items, 3)
	assert.Equal(t, "A", items[0].Name, "first occurrence wins")
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].ID, items[1].ID, items[2].ID})
}
