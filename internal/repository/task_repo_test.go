package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"tasktracker/internal/docstore"
	"tasktracker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newTestRepo() (*docstore.MemoryStore, *TaskRepository) {
	store := docstore.NewMemoryStore()
	return store, NewTaskRepository(store, zap.NewNop())
}

func mustCreate(t *testing.T, repo *TaskRepository, title, date string) map[string]any {
	t.Helper()
	task, err := repo.Create(context.Background(), model.TaskInput{Title: strPtr(title), Date: strPtr(date)})
	require.NoError(t, err)
	return task
}

func TestCreate_AppliesDefaults(t *testing.T) {
	_, repo := newTestRepo()
	existing := mustCreate(t, repo, "first", "2024-03-14")

	task := mustCreate(t, repo, "second", "2024-03-15")

	assert.NotEmpty(t, task["id"])
	assert.NotEqual(t, existing["id"], task["id"])
	assert.Equal(t, false, task["completed"])
	assert.Equal(t, "medium", task["priority"])
	assert.IsType(t, "", task["createdAt"])
	assert.NotContains(t, task, "description")
}

func TestCreate_KeepsGivenValues(t *testing.T) {
	_, repo := newTestRepo()
	done := true
	low := model.PriorityLow

	task, err := repo.Create(context.Background(), model.TaskInput{
		Title:     strPtr("x"),
		Date:      strPtr("2024-03-15"),
		Completed: &done,
		Priority:  &low,
		Category:  strPtr("work"),
	})
	require.NoError(t, err)
	assert.Equal(t, true, task["completed"])
	assert.Equal(t, "low", task["priority"])
	assert.Equal(t, "work", task["category"])
}

func TestCreate_DateRoundTrip(t *testing.T) {
	_, repo := newTestRepo()
	created := mustCreate(t, repo, "x", "2024-03-15")

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created["id"], tasks[0]["id"])

	date, err := time.Parse(docstore.ISOLayout, tasks[0]["date"].(string))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", date.Format(time.DateOnly))
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	store, repo := newTestRepo()

	_, err := repo.Create(context.Background(), model.TaskInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, model.ErrInvalidTask)
	_, err = repo.Create(context.Background(), model.TaskInput{Date: strPtr("2024-03-15")})
	assert.ErrorIs(t, err, model.ErrInvalidTask)
	_, err = repo.Create(context.Background(), model.TaskInput{Title: strPtr("x"), Date: strPtr("not a date")})
	assert.ErrorIs(t, err, model.ErrInvalidTask)

	docs, _ := store.Query(context.Background(), model.Collection, docstore.Query{})
	assert.Empty(t, docs)
}

func TestList_NewestFirst(t *testing.T) {
	_, repo := newTestRepo()
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	a := mustCreate(t, repo, "A", "2024-03-20")
	b := mustCreate(t, repo, "B", "2024-03-01")

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, b["id"], tasks[0]["id"])
	assert.Equal(t, a["id"], tasks[1]["id"])
}

func TestList_SameCreatedAtKeepsWriteOrder(t *testing.T) {
	_, repo := newTestRepo()
	fixed := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	a := mustCreate(t, repo, "A", "2024-03-20")
	b := mustCreate(t, repo, "B", "2024-03-20")

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{b["id"], a["id"]}, []any{tasks[0]["id"], tasks[1]["id"]})
}

func TestList_Empty(t *testing.T) {
	_, repo := newTestRepo()
	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestUpdate_PartialFields(t *testing.T) {
	_, repo := newTestRepo()
	task := mustCreate(t, repo, "x", "2024-03-15")
	id := task["id"].(string)
	done := true

	updated, err := repo.Update(context.Background(), id, model.TaskInput{Completed: &done, Date: strPtr("2024-04-01")})
	require.NoError(t, err)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "x", updated["title"])
	assert.Equal(t, "2024-04-01T00:00:00.000Z", updated["date"])
	assert.Equal(t, task["createdAt"], updated["createdAt"])
	assert.Equal(t, id, updated["id"])
}

func TestUpdate_NotFoundLeavesOthersAlone(t *testing.T) {
	_, repo := newTestRepo()
	other := mustCreate(t, repo, "keep", "2024-03-15")

	_, err := repo.Update(context.Background(), "missing", model.TaskInput{Title: strPtr("changed")})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.Get(context.Background(), other["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, "keep", got["title"])
}

func TestUpdate_Validation(t *testing.T) {
	_, repo := newTestRepo()
	task := mustCreate(t, repo, "x", "2024-03-15")
	id := task["id"].(string)

	_, err := repo.Update(context.Background(), id, model.TaskInput{})
	assert.ErrorIs(t, err, model.ErrInvalidTask)

	urgent := model.Priority("urgent")
	_, err = repo.Update(context.Background(), id, model.TaskInput{Priority: &urgent})
	assert.ErrorIs(t, err, model.ErrInvalidTask)
}

func TestUpdate_MissingTaskWinsOverInvalidPatch(t *testing.T) {
	_, repo := newTestRepo()
	mustCreate(t, repo, "x", "2024-03-15")

	_, err := repo.Update(context.Background(), "missing", model.TaskInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	urgent := model.Priority("urgent")
	_, err = repo.Update(context.Background(), "missing", model.TaskInput{Priority: &urgent})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_TwiceReturnsNotFound(t *testing.T) {
	_, repo := newTestRepo()
	task := mustCreate(t, repo, "x", "2024-03-15")
	id := task["id"].(string)

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "never-existed"), ErrNotFound)
}

// racyStore reports the document as present on Get but gone on write,
// the way a concurrent delete between the two calls looks.
type racyStore struct {
	docstore.Store
}

func (s racyStore) Update(context.Context, string, string, map[string]any) (docstore.Document, error) {
	return docstore.Document{}, docstore.ErrNotFound
}

func (s racyStore) Delete(context.Context, string, string) error {
	return docstore.ErrNotFound
}

func TestConcurrentDeleteSurfacesAsNotFound(t *testing.T) {
	mem := docstore.NewMemoryStore()
	doc, err := mem.Create(context.Background(), model.Collection, map[string]any{"title": "x"})
	require.NoError(t, err)
	repo := NewTaskRepository(racyStore{Store: mem}, zap.NewNop())

	_, err = repo.Update(context.Background(), doc.ID, model.TaskInput{Title: strPtr("y")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), doc.ID), ErrNotFound)
}

type failingStore struct {
	docstore.Store
	err error
}

func (s failingStore) Create(context.Context, string, map[string]any) (docstore.Document, error) {
	return docstore.Document{}, s.err
}

func (s failingStore) Query(context.Context, string, docstore.Query) ([]docstore.Document, error) {
	return nil, s.err
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	repo := NewTaskRepository(failingStore{Store: docstore.NewMemoryStore(), err: boom}, zap.NewNop())

	_, err := repo.Create(context.Background(), model.TaskInput{Title: strPtr("x"), Date: strPtr("2024-03-15")})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.True(t, storeErr.Write)
	assert.ErrorIs(t, err, boom)

	_, err = repo.List(context.Background())
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, storeErr.Write)
}
