package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/calc"
	"github.com/fincase/bizcase-cli/internal/engine"
	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return New(engine.New(st, calc.New(2025, 7, 0), nil)).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createAnalysis(t *testing.T, h http.Handler) model.Analysis {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/analyses", map[string]string{
		"name": "Fleet Savings",
		"text": "annual savings of €2,000,000 with development costs of €500,000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a model.Analysis
	decode(t, rec, &a)
	return a
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["catalog"])
	assert.NotEmpty(t, body["defaults"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestServer(t)
	a := createAnalysis(t, h)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Fleet Savings", a.Name)
	assert.Equal(t, model.ArchetypeSavings, a.Archetype)
	require.NotNil(t, a.Result)
	assert.InDelta(t, 2000000, a.Result.SOM.First(), 1e-6)
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/analyses", map[string]string{"name": "Empty"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/analyses", bytes.NewBufferString("{not json"))
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestAnalyzeEndpointUnresolvable(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/analyses", map[string]string{
		"text": "a strategy memo without any figures",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetAndListEndpoints(t *testing.T) {
	h := newTestServer(t)
	a := createAnalysis(t, h)

	rec := doJSON(t, h, http.MethodGet, "/analyses/"+a.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Analysis
	decode(t, rec, &got)
	assert.Equal(t, a.ID, got.ID)

	rec = doJSON(t, h, http.MethodGet, "/analyses/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/analyses?archetype=savings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Analysis
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = doJSON(t, h, http.MethodGet, "/analyses?archetype=royalty", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	decode(t, rec, &list)
	assert.Empty(t, list)
}

func TestSimulateEndpoint(t *testing.T) {
	h := newTestServer(t)
	a := createAnalysis(t, h)

	rec := doJSON(t, h, http.MethodPost, "/analyses/"+a.ID+"/simulate", map[string]string{
		"instruction": "increase annual savings by 10%",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res model.SimulationResult
	decode(t, rec, &res)
	require.Len(t, res.Applied, 1)
	assert.InDelta(t, 2200000, res.Result.SOM.First(), 1e-6)

	rec = doJSON(t, h, http.MethodPost, "/analyses/"+a.ID+"/simulate", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// History is recorded per simulation.
	rec = doJSON(t, h, http.MethodGet, "/analyses/"+a.ID+"/simulations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []model.SimulationRecord
	decode(t, rec, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "increase annual savings by 10%", records[0].Instruction)
}

func TestSimulateEndpointMissingAnalysis(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/analyses/does-not-exist/simulate", map[string]string{
		"instruction": "increase annual savings by 10%",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestRevertEndpointMissingAnalysis(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/analyses/does-not-exist/revert", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestRevertEndpoint(t *testing.T) {
	h := newTestServer(t)
	a := createAnalysis(t, h)

	rec := doJSON(t, h, http.MethodPost, "/analyses/"+a.ID+"/simulate", map[string]string{
		"instruction": "increase annual savings by 10%",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/analyses/"+a.ID+"/revert", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.SimulationResult
	decode(t, rec, &res)
	assert.InDelta(t, 2000000, res.Result.SOM.First(), 1e-6)
}

func TestArchiveEndpoint(t *testing.T) {
	h := newTestServer(t)
	a := createAnalysis(t, h)

	rec := doJSON(t, h, http.MethodDelete, "/analyses/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/analyses/"+a.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Analysis
	decode(t, rec, &got)
	assert.Equal(t, model.AnalysisStatusArchived, got.Status)

	rec = doJSON(t, h, http.MethodDelete, "/analyses/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
