package store

import (
	"context"
	"encoding/json"
	"sync"

	"talentlens/internal/errors"
	"talentlens/internal/types"
)

// MemoryCollection is an in-process DocumentCollection. It backs tests and
// single-node deployments that do not need durability.
type MemoryCollection struct {
	mu    sync.RWMutex
	docs  map[string]*types.CandidateRecord
	order []string
}

// NewMemoryCollection creates an empty in-memory collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{
		docs: make(map[string]*types.CandidateRecord),
	}
}

func (m *MemoryCollection) Get(ctx context.Context, id string) (*types.CandidateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, notFoundErr(id)
	}
	copied := *doc
	return &copied, nil
}

func (m *MemoryCollection) Put(ctx context.Context, record *types.CandidateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[record.ID]; !exists {
		m.order = append(m.order, record.ID)
	}
	copied := *record
	m.docs[record.ID] = &copied
	return nil
}

func (m *MemoryCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return notFoundErr(id)
	}

	// Round-trip through JSON so the partial update follows the same
	// field naming as the durable drivers.
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to encode document", err)
	}
	var merged map[string]any
	if err := json.Unmarshal(raw, &merged); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to decode document", err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to encode merged document", err)
	}
	var updated types.CandidateRecord
	if err := json.Unmarshal(raw, &updated); err != nil {
		return errors.NewStoreError(errors.ErrCodeStoreFailed, "failed to decode merged document", err)
	}

	m.docs[id] = &updated
	return nil
}

func (m *MemoryCollection) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return notFoundErr(id)
	}
	delete(m.docs, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryCollection) FindByUID(ctx context.Context, externalUID string) (*types.CandidateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		doc := m.docs[id]
		if doc.ExternalUID == externalUID {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, errors.NewStoreError(
		errors.ErrCodeRecordNotFound,
		"no candidate record for external uid",
		nil,
	).WithContext("external_uid", externalUID)
}

func (m *MemoryCollection) List(ctx context.Context) ([]*types.CandidateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.CandidateRecord, 0, len(m.order))
	for _, id := range m.order {
		copied := *m.docs[id]
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MemoryCollection) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryCollection) Close() error {
	return nil
}
