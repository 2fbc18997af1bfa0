package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobiome/domain/core"
	"gobiome/domain/run"
	"gobiome/internal"
	"gobiome/internal/errors"
)

type stubRepo struct {
	runs map[core.RunID]*run.Record
}

func (s *stubRepo) SaveRun(ctx context.Context, record *run.Record) error {
	s.runs[record.ID] = record
	return nil
}

func (s *stubRepo) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	record, ok := s.runs[id]
	if !ok {
		return nil, errors.NotFound("run " + string(id))
	}
	return record, nil
}

func (s *stubRepo) ListRuns(ctx context.Context, limit int) ([]*run.Record, error) {
	out := make([]*run.Record, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *run.Record) {
	t.Helper()
	record := run.NewRecord("deseq2", 0.05)
	record.Complete()
	repo := &stubRepo{runs: map[core.RunID]*run.Record{record.ID: record}}
	return NewServer(repo, internal.NewLogger(internal.LogLevelError)), record
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestListRunsEndpoint(t *testing.T) {
	server, record := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Runs []run.Record `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Runs, 1)
	assert.Equal(t, record.ID, payload.Runs[0].ID)
}

func TestGetRunEndpoint(t *testing.T) {
	server, record := newTestServer(t)

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+string(record.ID), nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got run.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, record.ID, got.ID)
		assert.Equal(t, "deseq2", got.Method)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/does-not-exist", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), errors.CodeNotFound)
	})
}

func TestGetRunReportEndpoint(t *testing.T) {
	server, record := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+string(record.ID)+"/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Analysis Run")
}
