// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
	requestutil "github.com/taibuivan/arxsub/internal/platform/request"
	"github.com/taibuivan/arxsub/internal/platform/respond"
)

// Handler exposes the taxonomy to the UI tier.
type Handler struct {
	taxonomy *Taxonomy
}

// NewHandler constructs a new category [Handler].
func NewHandler(taxonomy *Taxonomy) *Handler {
	return &Handler{taxonomy: taxonomy}
}

// Routes returns a [chi.Router] with the read-only taxonomy endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listCategories)
	router.Get("/{code}", handler.getCategory)
	return router
}

/*
GET /api/v1/categories.

Response:
  - 200: []Category: Every code, active or not
*/
func (handler *Handler) listCategories(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, handler.taxonomy.All())
}

/*
GET /api/v1/categories/{code}.

Response:
  - 200: Category
  - 404: Unknown code
*/
func (handler *Handler) getCategory(writer http.ResponseWriter, request *http.Request) {
	entry, ok := handler.taxonomy.Lookup(requestutil.Param(request, "code"))
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Category"))
		return
	}
	respond.OK(writer, entry)
}
