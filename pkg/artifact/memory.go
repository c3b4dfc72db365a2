package artifact

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/adforge/pkg/errors"
)

// Memory is an in-process [Store].
type Memory struct {
	opts storeOptions
	mu   sync.RWMutex
	data map[string]memEntry
}

type memEntry struct {
	ref  Ref
	data []byte
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	return &Memory{opts: buildOptions(opts), data: make(map[string]memEntry)}
}

func (m *Memory) Put(ctx context.Context, name, contentType string, data []byte) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	ref := m.opts.ref(m.opts.newID(), name, contentType, len(data))
	m.mu.Lock()
	m.data[ref.ID] = memEntry{ref: ref, data: slices.Clone(data)}
	m.mu.Unlock()
	return ref, nil
}

func (m *Memory) Get(ctx context.Context, id string) ([]byte, Ref, error) {
	if err := errors.ValidateArtifactID(id); err != nil {
		return nil, Ref{}, err
	}
	m.mu.RLock()
	e, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, Ref{}, notFound(id)
	}
	return slices.Clone(e.data), e.ref, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.data, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored artifacts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
