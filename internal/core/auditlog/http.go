// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/arxsub/internal/platform/middleware"
	requestutil "github.com/taibuivan/arxsub/internal/platform/request"
	"github.com/taibuivan/arxsub/internal/platform/respond"
	"github.com/taibuivan/arxsub/internal/platform/sec"
	"github.com/taibuivan/arxsub/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the log under the submission resource. Moderators only.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(moderator chi.Router) {
		moderator.Use(middleware.RequireRole(sec.RoleModerator))
		moderator.Get("/submissions/{id}/log", handler.List)
	})
}

/*
GET /api/v1/submissions/{id}/log.

Response:
  - 200: []Entry (paginated)
  - 400: ErrInvalidIdentifier
  - 401/403: not a moderator
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.Int64ID(request, "id", "submission")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	entries, total, err := handler.service.List(request.Context(), id, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}
