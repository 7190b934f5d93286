package notes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository guarda as notas em memória. Serve para desenvolvimento
// (DB_DRIVER=memory) e testes; tudo some quando o processo termina.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes map[string]Note
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{notes: make(map[string]Note)}
}

// List devolve as mais recentes primeiro.
func (m *MemoryRepository) List(_ context.Context) ([]Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Note, 0, len(m.notes))
	for _, n := range m.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	return n, nil
}

func (m *MemoryRepository) Create(_ context.Context, n Note) (Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notes[n.ID] = n
	return n, nil
}

func (m *MemoryRepository) Update(_ context.Context, n Note) (Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[n.ID]; !ok {
		return Note{}, ErrNotFound
	}
	m.notes[n.ID] = n
	return n, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[id]; !ok {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}
