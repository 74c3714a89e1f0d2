package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookscanner/internal/entities"
)

type mockDeleter struct {
	calls [][]entities.Book
	err   error
	// during runs inside DeleteMany, before it returns.
	during func()
}

func (d *mockDeleter) DeleteMany(_ context.Context, books []entities.Book) error {
	d.calls = append(d.calls, books)
	if d.during != nil {
		d.during()
	}
	return d.err
}

func sampleBooks() []entities.Book {
	return []entities.Book{
		{ID: 3, ISBN: "333", Title: "Three"},
		{ID: 2, ISBN: "222", Title: "Two"},
		{ID: 1, ISBN: "111", Title: "One"},
	}
}

func TestToggle(t *testing.T) {
	m := NewManager(&mockDeleter{})

	assert.False(t, m.Active())
	assert.True(t, m.Toggle(2))
	assert.True(t, m.Contains(2))
	assert.True(t, m.Active())

	assert.False(t, m.Toggle(2))
	assert.False(t, m.Contains(2))
	assert.False(t, m.Active())
}

func TestSelectedIsSorted(t *testing.T) {
	m := NewManager(&mockDeleter{})
	m.Toggle(5)
	m.Toggle(1)
	m.Toggle(3)

	assert.Equal(t, []uint{1, 3, 5}, m.Selected())
}

func TestClear(t *testing.T) {
	m := NewManager(&mockDeleter{})
	m.Toggle(1)
	m.Toggle(2)

	m.Clear()
	assert.Empty(t, m.Selected())
	assert.False(t, m.Active())
}

func TestDeleteSelected_FiltersAgainstCurrent(t *testing.T) {
	deleter := &mockDeleter{}
	m := NewManager(deleter)
	m.Toggle(2)

	n, err := m.DeleteSelected(context.Background(), sampleBooks())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, deleter.calls, 1)
	require.Len(t, deleter.calls[0], 1)
	assert.Equal(t, uint(2), deleter.calls[0][0].ID)
	assert.Empty(t, m.Selected())
}

func TestDeleteSelected_IgnoresStaleIDs(t *testing.T) {
	deleter := &mockDeleter{}
	m := NewManager(deleter)
	m.Toggle(1)
	m.Toggle(42)

	n, err := m.DeleteSelected(context.Background(), sampleBooks())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, deleter.calls, 1)
	assert.Equal(t, []entities.Book{{ID: 1, ISBN: "111", Title: "One"}}, deleter.calls[0])
	assert.False(t, m.Active())
}

func TestDeleteSelected_EmptySelectionIsNoop(t *testing.T) {
	deleter := &mockDeleter{}
	m := NewManager(deleter)

	n, err := m.DeleteSelected(context.Background(), sampleBooks())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, deleter.calls)
}

func TestDeleteSelected_NothingMatches(t *testing.T) {
	deleter := &mockDeleter{}
	m := NewManager(deleter)
	m.Toggle(42)

	n, err := m.DeleteSelected(context.Background(), sampleBooks())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, deleter.calls)
	assert.False(t, m.Active())
}

func TestDeleteSelected_FailureKeepsSelection(t *testing.T) {
	deleter := &mockDeleter{err: errors.New("database is locked")}
	m := NewManager(deleter)
	m.Toggle(1)
	m.Toggle(3)

	n, err := m.DeleteSelected(context.Background(), sampleBooks())
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []uint{1, 3}, m.Selected())
}

func TestDeleteSelected_KeepsToggleMadeDuringDelete(t *testing.T) {
	deleter := &mockDeleter{}
	m := NewManager(deleter)
	deleter.during = func() { m.Toggle(3) }
	m.Toggle(2)

	_, err := m.DeleteSelected(context.Background(), sampleBooks())
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, m.Selected())
}
