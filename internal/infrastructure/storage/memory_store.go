package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process ObjectStore for local development and tests.
// Failures can be injected per operation.
type MemoryStore struct {
	mu            sync.RWMutex
	objects       map[string][]byte
	pageSize      int
	publicBaseURL string

	failListPage int
	listErr      error
	listDelay    time.Duration
	statErr      error
	deleteErrs   map[string]error
	deleteDelays map[string]time.Duration
	deleteCalls  int
}

// NewMemoryStore returns an empty store. pageSize <= 0 means 1000.
func NewMemoryStore(pageSize int, publicBaseURL string) *MemoryStore {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &MemoryStore{
		objects:       make(map[string][]byte),
		pageSize:      pageSize,
		publicBaseURL: publicBaseURL,
		deleteErrs:    make(map[string]error),
		deleteDelays:  make(map[string]time.Duration),
	}
}

// Seed adds objects with the given sizes.
func (m *MemoryStore) Seed(sizes map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, size := range sizes {
		m.objects[key] = make([]byte, size)
	}
}

// FailListPage makes the n-th page of every listing (1-based) return err.
func (m *MemoryStore) FailListPage(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failListPage = n
	m.listErr = err
}

// SetListDelay delays every List call, honoring context cancellation.
func (m *MemoryStore) SetListDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listDelay = d
}

// FailStat makes every Stat call return err.
func (m *MemoryStore) FailStat(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErr = err
}

// FailDelete makes deleting key report err without removing it.
func (m *MemoryStore) FailDelete(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErrs[key] = err
}

// SetDeleteDelay delays any Delete call that includes key, honoring context
// cancellation.
func (m *MemoryStore) SetDeleteDelay(key string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteDelays[key] = d
}

// DeleteCalls returns how many Delete calls were made.
func (m *MemoryStore) DeleteCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deleteCalls
}

// Has reports whether key exists.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Keys returns all keys, sorted.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) List(ctx context.Context, prefix, token string) (Page, error) {
	m.mu.RLock()
	delay := m.listDelay
	m.mu.RUnlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	// The token is the last key of the previous page.
	start := 0
	if token != "" {
		start = sort.SearchStrings(keys, token)
		if start < len(keys) && keys[start] == token {
			start++
		}
	}

	pageNumber := 1
	if start > 0 {
		pageNumber = start/m.pageSize + 1
	}
	if m.failListPage > 0 && pageNumber == m.failListPage {
		return Page{}, m.listErr
	}

	end := min(start+m.pageSize, len(keys))
	page := Page{Objects: make([]Object, 0, end-start)}
	for _, k := range keys[start:end] {
		page.Objects = append(page.Objects, Object{Key: k, Size: int64(len(m.objects[k]))})
	}
	if end < len(keys) {
		page.NextToken = keys[end-1]
	}
	return page, nil
}

func (m *MemoryStore) Stat(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.statErr != nil {
		return false, m.statErr
	}
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStore) Delete(ctx context.Context, keys []string) (map[string]error, error) {
	var delay time.Duration
	m.mu.RLock()
	for _, k := range keys {
		delay = max(delay, m.deleteDelays[k])
	}
	m.mu.RUnlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++

	failures := make(map[string]error)
	for _, k := range keys {
		if err, ok := m.deleteErrs[k]; ok {
			failures[k] = err
			continue
		}
		delete(m.objects, k)
	}
	return failures, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("empty object key")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *MemoryStore) PublicURL(key string) string {
	if m.publicBaseURL == "" {
		return key
	}
	return joinURL(m.publicBaseURL, key)
}

func (m *MemoryStore) CheckConnection(ctx context.Context) error {
	return ctx.Err()
}
