package history

import (
	"context"
	"net/http"
	"time"

	"github.com/studiowebux/studentcrud/internal/api"
	"github.com/studiowebux/studentcrud/internal/types"
	"go.uber.org/zap"
)

// Operation names stored in the history table
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Recorder wraps a Store and saves one history entry per mutation.
// Reads pass through untouched. A nil manager disables recording.
type Recorder struct {
	store   api.Store
	manager *Manager
	logger  *zap.Logger
	now     func() time.Time
}

var _ api.Store = (*Recorder)(nil)

func NewRecorder(store api.Store, manager *Manager, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:   store,
		manager: manager,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *Recorder) List(ctx context.Context) ([]types.Student, error) {
	return r.store.List(ctx)
}

func (r *Recorder) Create(ctx context.Context, draft types.Draft) (types.Student, error) {
	entry := r.begin(OperationCreate, http.MethodPost, "", draft.FullName())
	ctx = api.WithCallObserver(ctx, entry.observe)

	created, err := r.store.Create(ctx, draft)
	if err == nil {
		entry.StudentID = created.ID
	}
	r.finish(entry, err)
	return created, err
}

func (r *Recorder) Update(ctx context.Context, id string, patch types.Patch) (types.Student, error) {
	name := ""
	if patch.FirstName != nil || patch.LastName != nil {
		name = patch.Apply(types.Student{}).FullName()
	}
	entry := r.begin(OperationUpdate, http.MethodPut, id, name)
	ctx = api.WithCallObserver(ctx, entry.observe)

	updated, err := r.store.Update(ctx, id, patch)
	if err == nil && updated.FullName() != "" {
		entry.StudentName = updated.FullName()
	}
	r.finish(entry, err)
	return updated, err
}

func (r *Recorder) Delete(ctx context.Context, id string) error {
	entry := r.begin(OperationDelete, http.MethodDelete, id, studentNameFrom(ctx))
	ctx = api.WithCallObserver(ctx, entry.observe)

	err := r.store.Delete(ctx, id)
	r.finish(entry, err)
	return err
}

type studentNameKey struct{}

// WithStudentName attaches the display name of the record a mutation targets.
// Delete has no body to take the name from, so callers that know it pass it here.
func WithStudentName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, studentNameKey{}, name)
}

func studentNameFrom(ctx context.Context) string {
	name, _ := ctx.Value(studentNameKey{}).(string)
	return name
}

// pending collects what the transport reports about a single mutation
type pending struct {
	types.HistoryEntry
	started time.Time
	seen    bool
}

func (p *pending) observe(call api.Call) {
	p.seen = true
	p.Method = call.Method
	p.URL = call.URL
	p.Status = call.Status
	p.DurationMs = call.Duration.Milliseconds()
}

func (r *Recorder) begin(operation, method, id, name string) *pending {
	now := r.now()
	return &pending{
		HistoryEntry: types.HistoryEntry{
			Timestamp:   now,
			Operation:   operation,
			StudentID:   id,
			StudentName: name,
			Method:      method,
		},
		started: now,
	}
}

func (r *Recorder) finish(p *pending, err error) {
	if !p.seen {
		// Store did not go through the HTTP client
		p.DurationMs = r.now().Sub(p.started).Milliseconds()
		if err == nil {
			p.Status = http.StatusOK
		} else {
			p.Status = api.StatusOf(err)
		}
	}
	if err != nil {
		p.Error = err.Error()
	}

	if r.manager == nil {
		return
	}
	if saveErr := r.manager.Save(p.HistoryEntry); saveErr != nil {
		r.logger.Warn("failed to save history entry",
			zap.String("operation", p.Operation),
			zap.String("student_id", p.StudentID),
			zap.Error(saveErr),
		)
	}
}
