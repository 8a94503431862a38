package history

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/studentcrud/internal/api"
	"github.com/studiowebux/studentcrud/internal/migrations"
	"github.com/studiowebux/studentcrud/internal/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestNewManager_RunsMigrations(t *testing.T) {
	mgr := newTestManager(t)

	version, err := migrations.GetCurrentVersion(mgr.db)
	require.NoError(t, err)
	assert.Equal(t, len(migrations.History.Migrations), version)
}

func TestNewManager_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(types.HistoryEntry{Operation: OperationCreate, Method: "POST", URL: "http://x/crud", Status: 201}))
	require.NoError(t, first.Close())

	second, err := NewManager(path)
	require.NoError(t, err)
	defer second.Close()

	count, err := second.GetCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestManager_SaveAndLoad(t *testing.T) {
	mgr := newTestManager(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, op := range []string{OperationCreate, OperationUpdate, OperationDelete} {
		require.NoError(t, mgr.Save(types.HistoryEntry{
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Operation:   op,
			StudentID:   "7",
			StudentName: "Ada Lovelace",
			Method:      http.MethodPost,
			URL:         "http://example.test/crud",
			Status:      200,
			DurationMs:  int64(10 * i),
		}))
	}

	entries, err := mgr.Load(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// newest first
	assert.Equal(t, OperationDelete, entries[0].Operation)
	assert.Equal(t, OperationCreate, entries[2].Operation)
	assert.True(t, entries[0].Timestamp.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "Ada Lovelace", entries[1].StudentName)
	assert.Equal(t, int64(10), entries[1].DurationMs)
	assert.NotZero(t, entries[0].ID)

	limited, err := mgr.Load(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestManager_LoadEmpty(t *testing.T) {
	mgr := newTestManager(t)

	entries, err := mgr.Load(10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestManager_Clear(t *testing.T) {
	mgr := newTestManager(t)
	require.NoError(t, mgr.Save(types.HistoryEntry{Operation: OperationDelete, Method: "DELETE", URL: "u", Status: 200}))

	require.NoError(t, mgr.Clear())

	count, err := mgr.GetCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

// fakeStore never touches the network, so no Call is observed
type fakeStore struct {
	students []types.Student
	err      error
	calls    int
}

func (f *fakeStore) List(ctx context.Context) ([]types.Student, error) {
	f.calls++
	return f.students, f.err
}

func (f *fakeStore) Create(ctx context.Context, draft types.Draft) (types.Student, error) {
	f.calls++
	if f.err != nil {
		return types.Student{}, f.err
	}
	return types.Student{ID: "42", Draft: draft}, nil
}

func (f *fakeStore) Update(ctx context.Context, id string, patch types.Patch) (types.Student, error) {
	f.calls++
	if f.err != nil {
		return types.Student{}, f.err
	}
	return patch.Apply(types.Student{ID: id}), nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.calls++
	return f.err
}

func TestRecorder_RecordsMutationsNotReads(t *testing.T) {
	mgr := newTestManager(t)
	store := &fakeStore{}
	rec := NewRecorder(store, mgr, nil)
	ctx := context.Background()

	_, err := rec.List(ctx)
	require.NoError(t, err)

	created, err := rec.Create(ctx, types.Draft{FirstName: "Ada", LastName: "Lovelace", Birthdate: "1815-12-10", PhoneNumber: "1"})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)

	name := "Grace"
	_, err = rec.Update(ctx, "42", types.Patch{FirstName: &name})
	require.NoError(t, err)

	require.NoError(t, rec.Delete(WithStudentName(ctx, "Grace Lovelace"), "42"))
	assert.Equal(t, 4, store.calls)

	entries, err := mgr.Load(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byOp := map[string]types.HistoryEntry{}
	for _, e := range entries {
		byOp[e.Operation] = e
	}

	assert.Equal(t, "42", byOp[OperationCreate].StudentID)
	assert.Equal(t, "Ada Lovelace", byOp[OperationCreate].StudentName)
	assert.Equal(t, http.MethodPost, byOp[OperationCreate].Method)
	assert.Equal(t, "Grace", byOp[OperationUpdate].StudentName)
	assert.Equal(t, http.MethodPut, byOp[OperationUpdate].Method)
	assert.Equal(t, http.MethodDelete, byOp[OperationDelete].Method)
	assert.Equal(t, "Grace Lovelace", byOp[OperationDelete].StudentName)
	for _, e := range entries {
		assert.True(t, e.Succeeded(), "entry %s should succeed", e.Operation)
	}
}

func TestRecorder_RecordsFailures(t *testing.T) {
	mgr := newTestManager(t)
	store := &fakeStore{err: &api.StatusError{Method: "DELETE", URL: "u", Status: 404, StatusText: "404 Not Found"}}
	rec := NewRecorder(store, mgr, nil)

	err := rec.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrNotFound))

	entries, err := mgr.Load(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 404, entries[0].Status)
	assert.Equal(t, "missing", entries[0].StudentID)
	assert.NotEmpty(t, entries[0].Error)
	assert.False(t, entries[0].Succeeded())
}

func TestRecorder_UsesTransportCall(t *testing.T) {
	mgr := newTestManager(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := api.New(api.Options{BaseURL: srv.URL, Resource: "crud", Timeout: time.Second})
	require.NoError(t, err)
	defer client.CloseIdleConnections()

	rec := NewRecorder(client, mgr, nil)
	err = rec.Delete(context.Background(), "9")
	require.Error(t, err)

	entries, err := mgr.Load(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, srv.URL+"/crud/9", entries[0].URL)
	assert.Equal(t, http.MethodDelete, entries[0].Method)
	assert.Equal(t, http.StatusInternalServerError, entries[0].Status)
	assert.NotEmpty(t, entries[0].Error)
}

func TestRecorder_NilManager(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, nil, nil)

	_, err := rec.Create(context.Background(), types.Draft{FirstName: "A"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}
