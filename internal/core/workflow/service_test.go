// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/core/workflow"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/ctxutil"
	"github.com/taibuivan/arxsub/internal/platform/filestore"
	"github.com/taibuivan/arxsub/internal/platform/sec"
)

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, string, string, any) error { return nil }

type harness struct {
	workflow    *workflow.Service
	submissions *submission.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taxonomy, err := category.DefaultTaxonomy()
	require.NoError(t, err)

	flow := workflow.NewService(mustCatalog(t), workflow.NewMemorySeenStore(), logger)
	submissions := submission.NewService(
		submission.NewMemoryRepository(),
		taxonomy,
		filestore.New(t.TempDir(), time.Millisecond, logger),
		flow,
		discardPublisher{},
		submission.Options{ActivePolicyID: 3, MaxSourceBytes: 1 << 20, SerializeFileOperations: true},
		logger,
	)
	return &harness{workflow: flow, submissions: submissions}
}

var (
	owner = submission.Actor{User: sec.User{Identifier: "1234", Role: sec.RoleSubmitter, AgentType: sec.AgentUser}}
	bot   = submission.Actor{User: sec.User{Identifier: "compiler", Role: sec.RoleAutomation, AgentType: sec.AgentAutomation}}
)

func code(t *testing.T, err error) string {
	t.Helper()
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected an AppError, got %v", err)
	return ae.Code
}

/*
TestService_FinalizeIsGatedByStages drives a submission through every stage
and only then lets it finalize.
*/
func TestService_FinalizeIsGatedByStages(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	s, err := h.submissions.Start(ctx, owner, submission.StartInput{Type: submission.TypeNew})
	require.NoError(t, err)

	_, err = h.submissions.Finalize(ctx, owner, s.ID)
	assert.Equal(t, "CONFLICT", code(t, err))

	view, err := h.workflow.View(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, view.CurrentStage)
	assert.Equal(t, "verify_user", *view.CurrentStage)
	assert.False(t, view.Complete)

	// Stage data
	_, err = h.submissions.VerifyUser(ctx, owner, s.ID)
	require.NoError(t, err)
	_, err = h.submissions.AssertAuthorship(ctx, owner, s.ID, submission.AuthorshipInput{IAmAuthor: true})
	require.NoError(t, err)
	_, err = h.submissions.SetLicense(ctx, owner, s.ID, "http://creativecommons.org/licenses/by/4.0/")
	require.NoError(t, err)
	_, err = h.submissions.AcceptPolicy(ctx, owner, s.ID, 3)
	require.NoError(t, err)
	_, _, err = h.submissions.SetCategories(ctx, owner, s.ID, category.Target{Primary: "astro-ph.EP"})
	require.NoError(t, err)
	_, err = h.submissions.UploadSource(ctx, owner, s.ID, "application/gzip", bytes.NewReader([]byte("source")))
	require.NoError(t, err)
	s, err = h.submissions.StorePreview(ctx, bot, s.ID, bytes.NewReader([]byte("%PDF")))
	require.NoError(t, err)

	title, abstract := "Orbits", "We study orbits."
	authors := []submission.Author{{Forename: "Jane", Surname: "Doe"}}
	_, _, err = h.submissions.SetMetadata(ctx, owner, s.ID, submission.MetadataInput{Title: &title, Abstract: &abstract, Authors: &authors})
	require.NoError(t, err)
	s, err = h.submissions.ConfirmPreview(ctx, owner, s.ID, s.Preview.PreviewChecksum)
	require.NoError(t, err)

	// Data alone is not enough: must-see stages are still unseen
	_, err = h.submissions.Finalize(ctx, owner, s.ID)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
	assert.Contains(t, ae.Message, "verify_user")
	assert.Contains(t, ae.Message, "cross_list")

	for _, label := range []string{"verify_user", "cross_list", "optional_metadata"} {
		_, err = h.workflow.MarkSeen(ctx, s, label)
		require.NoError(t, err)
	}

	view, err = h.workflow.View(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, view.CurrentStage)
	assert.Equal(t, "confirm", *view.CurrentStage)

	s, err = h.submissions.Finalize(ctx, owner, s.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusSubmitted, s.Status)

	view, err = h.workflow.View(ctx, s)
	require.NoError(t, err)
	assert.Nil(t, view.CurrentStage)
	assert.True(t, view.Complete)
}

func TestService_Check(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	s, err := h.submissions.Start(ctx, owner, submission.StartInput{Type: submission.TypeNew})
	require.NoError(t, err)

	check, err := h.workflow.Check(ctx, s, "license")
	require.NoError(t, err)
	assert.False(t, check.CanProceed)
	assert.Equal(t, []string{"verify_user", "authorship"}, check.Blocking)

	check, err = h.workflow.Check(ctx, s, "verify_user")
	require.NoError(t, err)
	assert.True(t, check.CanProceed)
	assert.Empty(t, check.Blocking)

	_, err = h.workflow.Check(ctx, s, "nowhere")
	assert.Equal(t, "NOT_FOUND", code(t, err))

	_, err = h.workflow.MarkSeen(ctx, s, "nowhere")
	assert.Equal(t, "NOT_FOUND", code(t, err))
}

func TestHandler_Workflow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	s, err := h.submissions.Start(ctx, owner, submission.StartInput{Type: submission.TypeNew})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := &sec.AuthClaims{UserID: request.Header.Get("X-Test-User"), Role: "submitter"}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
		})
	})
	workflow.NewHandler(h.workflow, h.submissions).RegisterRoutes(router)

	serve := func(method, path, uid string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(method, path, nil)
		request.Header.Set("X-Test-User", uid)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	recorder := serve(http.MethodPost, "/submissions/1/workflow/verify_user/seen", "1234")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data workflow.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, s.ID, body.Data.SubmissionID)
	assert.Equal(t, workflow.NameSubmission, body.Data.Workflow)
	require.NotEmpty(t, body.Data.Stages)
	assert.Equal(t, "verify_user", body.Data.Stages[0].Label)
	assert.True(t, body.Data.Stages[0].Seen)
	assert.False(t, body.Data.Stages[0].Done)

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/submissions/1/workflow", "1234").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/submissions/1/workflow/license", "1234").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/submissions/1/workflow/nowhere", "1234").Code)
	assert.Equal(t, http.StatusForbidden, serve(http.MethodGet, "/submissions/1/workflow", "9999").Code)
}
