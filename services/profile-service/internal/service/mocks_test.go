package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"seungpyo.lee/StudentPortal/services/profile-service/internal/domain"
)

// mockStore is an in-memory domain.ImageStore.
type mockStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	openErr   map[string]error
	existsErr error
	closed    int
}

func newMockStore() *mockStore {
	return &mockStore{files: map[string][]byte{}, openErr: map[string]error{}}
}

func (m *mockStore) Backend() string { return "mock" }

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.files[key]
	return ok, nil
}

func (m *mockStore) Open(_ context.Context, key string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.openErr[key]; err != nil {
		return nil, 0, err
	}
	data, ok := m.files[key]
	if !ok {
		return nil, 0, errors.New("no such file")
	}
	return &trackingReader{Reader: bytes.NewReader(data), store: m}, int64(len(data)), nil
}

func (m *mockStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return domain.ErrImageNotFound
	}
	delete(m.files, key)
	return nil
}

func (m *mockStore) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type trackingReader struct {
	io.Reader
	store *mockStore
	err   error
}

func (r *trackingReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.Reader.Read(p)
}

func (r *trackingReader) Close() error {
	r.store.mu.Lock()
	r.store.closed++
	r.store.mu.Unlock()
	return nil
}

// failingReadStore opens successfully but fails mid-read.
type failingReadStore struct {
	*mockStore
	readErr error
}

func (f *failingReadStore) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	rc, size, err := f.mockStore.Open(ctx, key)
	if err != nil {
		return nil, 0, err
	}
	rc.(*trackingReader).err = f.readErr
	return rc, size, nil
}

// mockMetadata is an in-memory domain.MetadataRepository.
type mockMetadata struct {
	mu   sync.Mutex
	rows map[string]domain.ProfileImage
}

func newMockMetadata() *mockMetadata {
	return &mockMetadata{rows: map[string]domain.ProfileImage{}}
}

func (m *mockMetadata) Upsert(_ context.Context, img *domain.ProfileImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[img.Identifier] = *img
	return nil
}

func (m *mockMetadata) GetByIdentifier(_ context.Context, identifier string) (*domain.ProfileImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.rows[identifier]
	if !ok {
		return nil, domain.ErrImageNotFound
	}
	return &img, nil
}

func (m *mockMetadata) DeleteByIdentifier(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, identifier)
	return nil
}

// failingMetadata rejects every write.
type failingMetadata struct {
	err error
}

func (f failingMetadata) Upsert(context.Context, *domain.ProfileImage) error { return f.err }

func (f failingMetadata) GetByIdentifier(context.Context, string) (*domain.ProfileImage, error) {
	return nil, domain.ErrImageNotFound
}

func (f failingMetadata) DeleteByIdentifier(context.Context, string) error { return f.err }

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+": "+msg)
}

func (l *recordingLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }

type stubPrincipal string

func (p stubPrincipal) Name() string { return string(p) }
