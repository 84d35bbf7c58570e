// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/platform/ctxutil"
	"github.com/taibuivan/arxsub/internal/platform/sec"
)

// # Router Fixture

// withClaims stands in for the token middleware.
func withClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if uid := request.Header.Get("X-Test-User"); uid != "" {
			claims := &sec.AuthClaims{
				UserID:   uid,
				Role:     request.Header.Get("X-Test-Role"),
				Forename: "Jane",
				Surname:  "Doe",
				Email:    "jane@example.org",
			}
			request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
		}
		next.ServeHTTP(writer, request)
	})
}

func newRouter(t *testing.T) (chi.Router, *fixture) {
	t.Helper()
	f := newFixture(t)

	router := chi.NewRouter()
	router.Use(withClaims)
	submission.NewHandler(f.service).RegisterRoutes(router)
	return router, f
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Code string          `json:"code"`
}

func call(t *testing.T, router http.Handler, method, path, uid, role, body string) (int, envelope) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if uid != "" {
		request.Header.Set("X-Test-User", uid)
		request.Header.Set("X-Test-Role", role)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var decoded envelope
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	}
	return recorder.Code, decoded
}

// # Tests

func TestHandler_StartAndStages(t *testing.T) {
	router, _ := newRouter(t)

	status, body := call(t, router, http.MethodPost, "/submissions", "1234", "submitter", `{"submission_type":"new"}`)
	require.Equal(t, http.StatusCreated, status)

	var created submission.Submission
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, submission.StatusWorking, created.Status)

	status, body = call(t, router, http.MethodPost, "/submissions/1/acceptPolicy", "1234", "submitter", `{"policy_id":2}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_POLICY", body.Code)

	status, _ = call(t, router, http.MethodPost, "/submissions/1/acceptPolicy", "1234", "submitter", `{"policy_id":3}`)
	assert.Equal(t, http.StatusOK, status)

	status, body = call(t, router, http.MethodPost, "/submissions/1/setCategories", "1234", "submitter",
		`{"primary_category":"astro-ph.EP","secondary_categories":["astro-ph.GA"]}`)
	require.Equal(t, http.StatusOK, status)

	var change struct {
		SubmissionID   int64    `json:"submission_id"`
		NewPrimary     *string  `json:"new_primary"`
		NewSecondaries []string `json:"new_secondaries"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &change))
	assert.Equal(t, int64(1), change.SubmissionID)
	require.NotNil(t, change.NewPrimary)
	assert.Equal(t, "astro-ph.EP", *change.NewPrimary)
	assert.Equal(t, []string{"astro-ph.GA"}, change.NewSecondaries)

	status, body = call(t, router, http.MethodPost, "/submissions/1/setMetadata", "1234", "submitter", `{"title":"Orbits"}`)
	require.Equal(t, http.StatusOK, status)

	var metadata struct {
		UpdatedFields []string `json:"updated_fields"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &metadata))
	assert.Equal(t, []string{"title"}, metadata.UpdatedFields)
}

func TestHandler_AccessControl(t *testing.T) {
	router, _ := newRouter(t)

	status, _ := call(t, router, http.MethodPost, "/submissions", "1234", "submitter", `{"submission_type":"new"}`)
	require.Equal(t, http.StatusCreated, status)

	tests := []struct {
		name   string
		method string
		path   string
		uid    string
		role   string
		body   string
		status int
		code   string
	}{
		{"anonymous", http.MethodGet, "/submissions/1", "", "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"stranger", http.MethodGet, "/submissions/1", "9999", "submitter", "", http.StatusForbidden, "FORBIDDEN"},
		{"bad_id", http.MethodGet, "/submissions/abc", "1234", "submitter", "", http.StatusBadRequest, "INVALID_IDENTIFIER"},
		{"unknown", http.MethodGet, "/submissions/77", "1234", "submitter", "", http.StatusNotFound, "NOT_FOUND"},
		{"submitter_on_pipeline_route", http.MethodPost, "/submissions/1/markProcessingForDeposit", "1234", "submitter", "", http.StatusForbidden, "FORBIDDEN"},
		{"automation_on_moderator_route", http.MethodPost, "/submissions/1/holds", "bot", "automation", `{"hold_type":"patch"}`, http.StatusForbidden, "FORBIDDEN"},
		{"invalid_json", http.MethodPost, "/submissions/1/setLicense", "1234", "submitter", `{`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown_license", http.MethodPost, "/submissions/1/setLicense", "1234", "submitter", `{"license_uri":"http://example.org"}`, http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"bad_arxiv_id", http.MethodPost, "/submissions/1/markDeposited", "bot", "automation", `{"arxiv_id":"nope"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, router, tt.method, tt.path, tt.uid, tt.role, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestHandler_UploadSource(t *testing.T) {
	router, _ := newRouter(t)

	status, _ := call(t, router, http.MethodPost, "/submissions", "1234", "submitter", `{"submission_type":"new"}`)
	require.Equal(t, http.StatusCreated, status)

	request := httptest.NewRequest(http.MethodPost, "/submissions/1/files", strings.NewReader("packed"))
	request.Header.Set("Content-Type", "application/gzip")
	request.Header.Set("X-Test-User", "1234")
	request.Header.Set("X-Test-Role", "submitter")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data submission.Submission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.NotNil(t, body.Data.SourceContent)
	assert.Equal(t, int64(6), body.Data.SourceContent.CompressedSize)
	assert.Equal(t, "application/gzip", body.Data.SourceContent.ContentType)
}

func TestHandler_ListPaginates(t *testing.T) {
	router, _ := newRouter(t)

	for i := 0; i < 3; i++ {
		status, _ := call(t, router, http.MethodPost, "/submissions", "1234", "submitter", `{"submission_type":"new"}`)
		require.Equal(t, http.StatusCreated, status)
	}

	request := httptest.NewRequest(http.MethodGet, "/submissions?limit=2", nil)
	request.Header.Set("X-Test-User", "1234")
	request.Header.Set("X-Test-Role", "submitter")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var page struct {
		Data []submission.Submission `json:"data"`
		Meta struct {
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Data[0].ID)
	assert.Equal(t, 3, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
}

func TestHandler_ListFiltersByStatus(t *testing.T) {
	router, _ := newRouter(t)

	for i := 0; i < 3; i++ {
		status, _ := call(t, router, http.MethodPost, "/submissions", "1234", "submitter", `{"submission_type":"new"}`)
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ := call(t, router, http.MethodDelete, "/submissions/2", "1234", "submitter", "")
	require.Equal(t, http.StatusOK, status)

	count := func(path string) int {
		status, body := call(t, router, http.MethodGet, path, "1234", "submitter", "")
		require.Equal(t, http.StatusOK, status)
		var items []submission.Submission
		require.NoError(t, json.Unmarshal(body.Data, &items))
		return len(items)
	}

	assert.Equal(t, 2, count("/submissions"))
	assert.Equal(t, 1, count("/submissions?status=deleted"))
	assert.Equal(t, 3, count("/submissions?status=working,%20deleted"))

	status, body := call(t, router, http.MethodGet, "/submissions?status=working,bogus", "1234", "submitter", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
}
