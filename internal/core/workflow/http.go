// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/arxsub/internal/core/submission"
	"github.com/taibuivan/arxsub/internal/platform/middleware"
	requestutil "github.com/taibuivan/arxsub/internal/platform/request"
	"github.com/taibuivan/arxsub/internal/platform/respond"
)

// SubmissionReader loads a submission the actor may see.
type SubmissionReader interface {
	Get(ctx context.Context, actor submission.Actor, id int64) (*submission.Submission, error)
}

// Handler implements the HTTP layer for workflow state.
type Handler struct {
	service     *Service
	submissions SubmissionReader
}

// NewHandler constructs a new workflow [Handler].
func NewHandler(service *Service, submissions SubmissionReader) *Handler {
	return &Handler{service: service, submissions: submissions}
}

// RegisterRoutes attaches the workflow endpoints. Ownership is checked by
// the [SubmissionReader].
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)
		user.Get("/submissions/{id}/workflow", handler.View)
		user.Get("/submissions/{id}/workflow/{stage}", handler.Check)
		user.Post("/submissions/{id}/workflow/{stage}/seen", handler.MarkSeen)
	})
}

func (handler *Handler) load(request *http.Request) (*submission.Submission, error) {
	actor, err := submission.ActorFromRequest(request)
	if err != nil {
		return nil, err
	}

	id, err := requestutil.Int64ID(request, "id", "Submission")
	if err != nil {
		return nil, err
	}

	return handler.submissions.Get(request.Context(), actor, id)
}

/*
GET /api/v1/submissions/{id}/workflow.

Response:
  - 200: View: Current stage and per-stage seen/complete/done flags
  - 403: ErrForbidden: Not the owner
*/
func (handler *Handler) View(writer http.ResponseWriter, request *http.Request) {
	s, err := handler.load(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.View(request.Context(), s)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
GET /api/v1/submissions/{id}/workflow/{stage}.

Response:
  - 200: StageCheck: Whether the stage may be entered and what blocks it
  - 404: ErrNotFound: Unknown stage label
*/
func (handler *Handler) Check(writer http.ResponseWriter, request *http.Request) {
	s, err := handler.load(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	check, err := handler.service.Check(request.Context(), s, requestutil.Param(request, "stage"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, check)
}

// POST /api/v1/submissions/{id}/workflow/{stage}/seen. Returns the updated View.
func (handler *Handler) MarkSeen(writer http.ResponseWriter, request *http.Request) {
	s, err := handler.load(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.MarkSeen(request.Context(), s, requestutil.Param(request, "stage"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}
