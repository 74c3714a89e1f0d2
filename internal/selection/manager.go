// Package selection tracks which records a user has picked and deletes them
// in one batch.
package selection

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/mrlokans/bookscanner/internal/entities"
)

// Deleter removes records in one batch.
type Deleter interface {
	DeleteMany(ctx context.Context, books []entities.Book) error
}

// Manager holds a set of selected record ids. Ids of records that no longer
// exist are harmless; DeleteSelected only acts on records the caller passes in.
type Manager struct {
	deleter Deleter

	mu       sync.Mutex
	selected map[uint]struct{}
}

// NewManager creates a manager with an empty selection.
func NewManager(deleter Deleter) *Manager {
	return &Manager{
		deleter:  deleter,
		selected: make(map[uint]struct{}),
	}
}

// Toggle adds id if absent and removes it otherwise. It reports whether id is
// selected afterwards.
func (m *Manager) Toggle(id uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return false
	}
	m.selected[id] = struct{}{}
	return true
}

// Clear empties the selection.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.selected)
}

// Contains reports whether id is selected.
func (m *Manager) Contains(id uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.selected[id]
	return ok
}

// Selected returns the selected ids in ascending order.
func (m *Manager) Selected() []uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Active reports whether selection mode is on, i.e. anything is selected.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.selected) > 0
}

// DeleteSelected deletes the records in current whose ids are selected, then
// clears the selection. It returns the number of records deleted. When the
// delete fails the selection is left as it was.
func (m *Manager) DeleteSelected(ctx context.Context, current []entities.Book) (int, error) {
	m.mu.Lock()
	if len(m.selected) == 0 {
		m.mu.Unlock()
		return 0, nil
	}
	picked := make([]uint, 0, len(m.selected))
	for id := range m.selected {
		picked = append(picked, id)
	}
	var targets []entities.Book
	for _, book := range current {
		if _, ok := m.selected[book.ID]; ok {
			targets = append(targets, book)
		}
	}
	if len(targets) == 0 {
		m.dropLocked(picked)
		m.mu.Unlock()
		return 0, nil
	}
	m.mu.Unlock()

	if err := m.deleter.DeleteMany(ctx, targets); err != nil {
		log.Printf("[SELECTION] Failed to delete %d records: %v", len(targets), err)
		return 0, err
	}

	// Ids toggled on while the delete ran stay selected.
	m.mu.Lock()
	m.dropLocked(picked)
	m.mu.Unlock()

	return len(targets), nil
}

func (m *Manager) dropLocked(ids []uint) {
	for _, id := range ids {
		delete(m.selected, id)
	}
}
