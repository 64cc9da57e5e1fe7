package repository

import (
	"context"
	"sync"

	"github.com/metinatakli/cinex/internal/domain"
)

type MemorySelectionRepository struct {
	mu         sync.Mutex
	selections map[domain.SelectionKey]*domain.SeatSelection
}

func NewMemorySelectionRepository() *MemorySelectionRepository {
	return &MemorySelectionRepository{
		selections: make(map[domain.SelectionKey]*domain.SeatSelection),
	}
}

func (m *MemorySelectionRepository) Get(ctx context.Context, key domain.SelectionKey) (*domain.SeatSelection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.selections[key]
	if !ok {
		return domain.NewSeatSelection(key.ShowID), nil
	}

	return s.Clone(), nil
}

func (m *MemorySelectionRepository) Update(
	ctx context.Context,
	key domain.SelectionKey,
	fn func(*domain.SeatSelection) error) (*domain.SeatSelection, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.selections[key]
	if !ok {
		current = domain.NewSeatSelection(key.ShowID)
	}

	// fn works on a copy so a rejected operation leaves the stored state untouched
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	m.selections[key] = next

	return next.Clone(), nil
}

func (m *MemorySelectionRepository) Delete(ctx context.Context, key domain.SelectionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.selections, key)

	return nil
}
