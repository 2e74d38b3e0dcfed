package content

import (
	"context"
	"sort"
	"testing"

	"github.com/gifexplorer/gifsearch/internal/db"
	"github.com/gifexplorer/gifsearch/internal/domain"
)

// memStore implements the consumer interface over an in-memory map, with
// per-op error injection for failure cases.
type memStore struct {
	data map[string][]byte

	getErr  error
	setErr  error
	delErr  error
	scanErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Del(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, key)
	return nil
}

func (m *memStore) Scan(_ context.Context, _ string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func newTestRepo(t *testing.T) (*Repo, *memStore) {
	t.Helper()
	ms := newMemStore()
	return New(ms), ms
}

func testRecord(id domain.ContentID, title string) domain.ContentRecord {
	return domain.ContentRecord{
		ID:       id,
		Name:     "gif.gif",
		Title:    title,
		Width:    320,
		Height:   240,
		Duration: 2.5,
		Uploader: "alice",
		Category: "animals",
		Tags:     []string{"cat", "funny"},
	}
}
