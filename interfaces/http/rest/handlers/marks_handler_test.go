package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/application/services"
	"fishdex/pkg/auth"
	apperrors "fishdex/pkg/errors"
)

type memMarkRepo struct {
	records []ports.MarkRecord
}

func (r *memMarkRepo) List(ctx context.Context, userID, entryID string) ([]ports.MarkRecord, error) {
	out := make([]ports.MarkRecord, 0)
	for _, rec := range r.records {
		if rec.UserID == userID && (entryID == "" || rec.EntryID == entryID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memMarkRepo) Upsert(ctx context.Context, rec ports.MarkRecord) (ports.MarkRecord, error) {
	for _, existing := range r.records {
		if existing.UserID == rec.UserID && existing.EntryID == rec.EntryID && existing.Address == rec.Address {
			return existing, nil
		}
	}
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *memMarkRepo) BatchUpsert(ctx context.Context, recs []ports.MarkRecord) ([]ports.MarkRecord, error) {
	out := make([]ports.MarkRecord, 0, len(recs))
	for _, rec := range recs {
		stored, err := r.Upsert(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func (r *memMarkRepo) Delete(ctx context.Context, userID, markID string) error {
	for i, rec := range r.records {
		if rec.UserID == userID && rec.ID == markID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("mark")
}

type memProgressRepo struct {
	sets map[string][]string
}

func (r *memProgressRepo) Get(ctx context.Context, userID string) ([]string, error) {
	collected, ok := r.sets[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("progress")
	}
	return collected, nil
}

func (r *memProgressRepo) Save(ctx context.Context, userID string, entryIDs []string) error {
	r.sets[userID] = entryIDs
	return nil
}

func newMarksRouter(t *testing.T) (*chi.Mux, *memMarkRepo) {
	t.Helper()
	repo := &memMarkRepo{}
	progress := &memProgressRepo{sets: make(map[string][]string)}
	service := services.NewMarkService(repo, progress, nil, zap.NewNop())
	handler := NewMarksHandler(service, zap.NewNop())

	router := chi.NewRouter()
	router.Route("/marks", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Post("/batch", handler.BatchCreate)
		r.Delete("/{markID}", handler.Delete)
	})
	return router, repo
}

func asUser(req *http.Request, userID string) *http.Request {
	ctx := auth.SetUserInContext(req.Context(), &auth.UserContext{UserID: userID})
	return req.WithContext(ctx)
}

func TestMarksHandler_CreateThenList(t *testing.T) {
	router, _ := newMarksRouter(t)

	body := `{"entry_id":"carp","address":"Pier A","recorded_at":"2026-03-01T12:00:00Z"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/marks", strings.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Success bool         `json:"success"`
		Data    MarkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.Data.ID)
	assert.Equal(t, "carp", created.Data.EntryID)

	req = asUser(httptest.NewRequest(http.MethodGet, "/marks?entry_id=carp", nil), "user-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Data []MarkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, created.Data.ID, listed.Data[0].ID)
}

func TestMarksHandler_CreateIsIdempotentPerAddress(t *testing.T) {
	router, repo := newMarksRouter(t)
	body := `{"entry_id":"carp","address":"Pier A"}`

	for i := 0; i < 2; i++ {
		req := asUser(httptest.NewRequest(http.MethodPost, "/marks", strings.NewReader(body)), "user-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	assert.Len(t, repo.records, 1)
}

func TestMarksHandler_CreateRejectsMissingFields(t *testing.T) {
	router, _ := newMarksRouter(t)

	req := asUser(httptest.NewRequest(http.MethodPost, "/marks", strings.NewReader(`{"entry_id":"carp"}`)), "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarksHandler_RequiresIdentity(t *testing.T) {
	router, _ := newMarksRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/marks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarksHandler_BatchCreate(t *testing.T) {
	router, repo := newMarksRouter(t)

	body := `{"marks":[{"entry_id":"carp","address":"Pier A"},{"entry_id":"perch","address":"Dock"}]}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/marks/batch", strings.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.records, 2)
}

func TestMarksHandler_DeleteScopedToOwner(t *testing.T) {
	router, repo := newMarksRouter(t)
	repo.records = append(repo.records, ports.MarkRecord{
		ID: "m1", UserID: "user-1", EntryID: "carp", Address: "Pier A", RecordedAt: time.Now(),
	})

	req := asUser(httptest.NewRequest(http.MethodDelete, "/marks/m1", nil), "user-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = asUser(httptest.NewRequest(http.MethodDelete, "/marks/m1", nil), "user-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.records)
}
