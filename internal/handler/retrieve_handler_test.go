package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/issue-retriever/internal/models"
	"github.com/ahmednasr/issue-retriever/internal/pipeline"
	"github.com/ahmednasr/issue-retriever/internal/service"
)

type fakeService struct {
	gotReq  models.RetrieveRequest
	resp    *models.RetrievalResponse
	err     error
	records map[string]models.StoredRecord
	recErr  error
}

func (f *fakeService) Retrieve(_ context.Context, req models.RetrieveRequest) (*models.RetrievalResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func (f *fakeService) GetRecord(_ context.Context, repo string, number int) (models.StoredRecord, error) {
	if f.recErr != nil {
		return models.StoredRecord{}, f.recErr
	}
	rec, ok := f.records[service.RecordID(repo, number)]
	if !ok {
		return models.StoredRecord{}, service.ErrRecordNotFound
	}
	return rec, nil
}

func newTestApp(svc service.RetrieverService) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, svc, service.NewSearchService(nil, nil, nil))
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/retrieve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRetrieve_AppliesDefaults(t *testing.T) {
	svc := &fakeService{resp: &models.RetrievalResponse{
		Issues: []models.IssueRecord{{IssueNumber: 1, Summary: "- Found a bug"}},
	}}
	app := newTestApp(svc)

	resp := postJSON(t, app, `{"repo":"octocat/Hello-World"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "octocat/Hello-World", svc.gotReq.Repo)
	assert.Equal(t, models.StateOpen, svc.gotReq.State)
	assert.Equal(t, models.DefaultChunkSize, svc.gotReq.ChunkSize)
	assert.Equal(t, models.DefaultChunkOverlap, svc.gotReq.ChunkOverlap)
	assert.Nil(t, svc.gotReq.IssueNumber)

	var got models.RetrievalResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "- Found a bug", got.Issues[0].Summary)
}

func TestRetrieve_ExplicitFields(t *testing.T) {
	svc := &fakeService{resp: &models.RetrievalResponse{}}
	app := newTestApp(svc)

	resp := postJSON(t, app, `{"repo":"o/r","state":"all","issue_number":7,"chunk_size":200,"chunk_overlap":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, models.StateAll, svc.gotReq.State)
	require.NotNil(t, svc.gotReq.IssueNumber)
	assert.Equal(t, 7, *svc.gotReq.IssueNumber)
	assert.Equal(t, 200, svc.gotReq.ChunkSize)
	assert.Equal(t, 0, svc.gotReq.ChunkOverlap)
}

func TestRetrieve_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", fmt.Errorf("%w: chunk_overlap must be smaller", pipeline.ErrInvalidRequest), http.StatusBadRequest},
		{"tracker", fmt.Errorf("%w: 404", pipeline.ErrTracker), http.StatusBadGateway},
		{"summarize", fmt.Errorf("%w: timeout", pipeline.ErrSummarize), http.StatusBadGateway},
		{"other", context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeService{err: tt.err})
			resp := postJSON(t, app, `{"repo":"o/r"}`)
			assert.Equal(t, tt.want, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.err.Error())
		})
	}
}

func TestRetrieve_BadJSON(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc)

	resp := postJSON(t, app, `{"repo":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, svc.gotReq.Repo)
}

func TestGetRecord(t *testing.T) {
	stored := models.StoredRecord{
		ID:     "octocat/Hello-World#1",
		Repo:   "octocat/Hello-World",
		Record: models.IssueRecord{IssueNumber: 1, Summary: "- s"},
	}
	svc := &fakeService{records: map[string]models.StoredRecord{stored.ID: stored}}
	app := newTestApp(svc)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/repos/octocat/Hello-World/issues/1", http.StatusOK},
		{"/api/v1/repos/octocat/Hello-World/issues/2", http.StatusNotFound},
		{"/api/v1/repos/octocat/Hello-World/issues/zero", http.StatusBadRequest},
		{"/api/v1/repos/octocat/Hello-World/issues/-3", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/repos/octocat/Hello-World/issues/1", nil))
	require.NoError(t, err)
	var got models.StoredRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "- s", got.Record.Summary)
}

func TestGetRecord_StoreDisabled(t *testing.T) {
	app := newTestApp(&fakeService{recErr: service.ErrStoreDisabled})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/repos/o/r/issues/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealth_NotConfigured(t *testing.T) {
	app := fiber.New()
	NewHealthHandler(nil).Register(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Status string            `json:"status"`
		DBs    map[string]string `json:"dbs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "not_configured", got.DBs["records"])
}
