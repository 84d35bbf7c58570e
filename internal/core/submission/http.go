// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/middleware"
	requestutil "github.com/taibuivan/arxsub/internal/platform/request"
	"github.com/taibuivan/arxsub/internal/platform/respond"
	"github.com/taibuivan/arxsub/internal/platform/sec"
	"github.com/taibuivan/arxsub/internal/platform/validate"
	"github.com/taibuivan/arxsub/pkg/pagination"
	"github.com/taibuivan/arxsub/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for submissions.
type Handler struct {
	service *Service
}

// NewHandler constructs a new submission [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
RegisterRoutes attaches the submission endpoints to the API router.

# Routing Strategy

  - Submitter (auth): creation, retrieval and every stage operation on the
    submitter's own submissions.
  - Automation: preview storage, the deposit pipeline, annotations, process
    reports and classifier proposals.
  - Moderator: holds, waivers, flags, comments and proposal decisions.

Ownership is checked by the [Service]; routes only gate on role.
*/
func (handler *Handler) RegisterRoutes(api chi.Router) {

	// Submitter endpoints
	api.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)
		user.Post("/submissions", handler.Start)
		user.Get("/submissions", handler.List)
		user.Get("/submissions/{id}", handler.Get)
		user.Delete("/submissions/{id}", handler.Delete)
		user.Get("/submissions/{id}/versions/{version}", handler.GetVersion)
		user.Post("/submissions/{id}/acceptPolicy", handler.AcceptPolicy)
		user.Post("/submissions/{id}/setLicense", handler.SetLicense)
		user.Post("/submissions/{id}/assertAuthorship", handler.AssertAuthorship)
		user.Post("/submissions/{id}/setCategories", handler.SetCategories)
		user.Post("/submissions/{id}/setMetadata", handler.SetMetadata)
		user.Post("/submissions/{id}/verifyUser", handler.VerifyUser)
		user.Post("/submissions/{id}/files", handler.UploadSource)
		user.Post("/submissions/{id}/confirmPreview", handler.ConfirmPreview)
		user.Post("/submissions/{id}/submit", handler.Finalize)
		user.Post("/submissions/{id}/unsubmit", handler.Unfinalize)
	})

	// Pipeline endpoints
	api.Group(func(automation chi.Router) {
		automation.Use(middleware.RequireRole(sec.RoleAutomation))
		automation.Post("/submissions/{id}/preview", handler.StorePreview)
		automation.Post("/submissions/{id}/markProcessingForDeposit", handler.MarkProcessingForDeposit)
		automation.Post("/submissions/{id}/unmarkProcessingForDeposit", handler.UnmarkProcessingForDeposit)
		automation.Post("/submissions/{id}/markDeposited", handler.MarkDeposited)
		automation.Post("/submissions/{id}/annotations", handler.AddAnnotation)
		automation.Post("/submissions/{id}/processes", handler.ReportProcess)
		automation.Post("/submissions/{id}/proposals", handler.AddProposal)
	})

	// Moderation endpoints
	api.Group(func(moderator chi.Router) {
		moderator.Use(middleware.RequireRole(sec.RoleModerator))
		moderator.Post("/submissions/{id}/holds", handler.AddHold)
		moderator.Post("/submissions/{id}/waivers", handler.AddWaiver)
		moderator.Post("/submissions/{id}/flags", handler.AddFlag)
		moderator.Post("/submissions/{id}/comments", handler.AddComment)
		moderator.Post("/submissions/{id}/proposals/{eventID}/accept", handler.AcceptProposal)
		moderator.Post("/submissions/{id}/proposals/{eventID}/reject", handler.RejectProposal)
	})
}

// ActorFromRequest resolves the acting user and client.
func ActorFromRequest(request *http.Request) (Actor, error) {
	user, client, err := requestutil.Identity(request)
	if err != nil {
		return Actor{}, err
	}
	return Actor{User: user, Client: client}, nil
}

// target resolves the actor and the submission id shared by every
// per-submission endpoint.
func target(request *http.Request) (Actor, int64, error) {
	actor, err := ActorFromRequest(request)
	if err != nil {
		return Actor{}, 0, err
	}

	id, err := requestutil.Int64ID(request, "id", "Submission")
	if err != nil {
		return Actor{}, 0, err
	}

	return actor, id, nil
}

// simple serves operations that take no body.
func (handler *Handler) simple(writer http.ResponseWriter, request *http.Request, operation func(context.Context, Actor, int64) (*Submission, error)) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := operation(request.Context(), actor, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, s)
}

// # Creation & Retrieval

/*
POST /api/v1/submissions.

Description: Starts a new submission, or an alteration of an announced paper.

Request:
  - body: StartInput

Response:
  - 201: Submission
  - 400: ErrValidation: Missing or unknown submission type
  - 401: ErrUnauthorized: Not the submitter of the altered paper
  - 404: ErrNotFound: Unknown paper
*/
func (handler *Handler) Start(writer http.ResponseWriter, request *http.Request) {
	actor, err := ActorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input StartInput
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.Start(request.Context(), actor, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, s)
}

/*
GET /api/v1/submissions.

Request:
  - status: comma separated statuses (optional; deleted submissions only appear when asked for)
  - page, limit: int

Response:
  - 200: []Submission: Paginated list of the caller's submissions
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	actor, err := ActorFromRequest(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	var filter Filter
	for _, status := range query.StringSlice(request.URL.Query().Get(constants.FieldStatus)) {
		filter.Statuses = append(filter.Statuses, Status(status))
	}

	items, total, err := handler.service.List(request.Context(), actor, filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/submissions/{id}.

Response:
  - 200: Submission
  - 400: ErrInvalidIdentifier: Non-integer id
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound
*/
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.Get(request.Context(), actor, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

/*
GET /api/v1/submissions/{id}/versions/{version}.

Response:
  - 200: Snapshot: The submission as announced in that version
  - 404: ErrNotFound: No such announced version
*/
func (handler *Handler) GetVersion(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	raw := requestutil.Param(request, "version")
	version, err := strconv.Atoi(raw)
	if err != nil || version <= 0 {
		respond.Error(writer, request, apperr.InvalidIdentifier("Version", raw))
		return
	}

	snapshot, err := handler.service.Snapshot(request.Context(), actor, id, version)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

// DELETE /api/v1/submissions/{id}. Moves the submission to deleted.
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	handler.simple(writer, request, handler.service.Delete)
}

// # Stage Operations

type acceptPolicyRequest struct {
	PolicyID int `json:"policy_id" validate:"required,gt=0"`
}

/*
POST /api/v1/submissions/{id}/acceptPolicy.

Request:
  - body: {"policy_id": int}

Response:
  - 200: Submission (unchanged when already accepted)
  - 400: ErrInvalidPolicy: Not the active policy
*/
func (handler *Handler) AcceptPolicy(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input acceptPolicyRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.AcceptPolicy(request.Context(), actor, id, input.PolicyID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

type setLicenseRequest struct {
	LicenseURI string `json:"license_uri" validate:"required"`
}

/*
POST /api/v1/submissions/{id}/setLicense.

Response:
  - 200: Submission
  - 422: ErrUnprocessable: Unrecognized license URI
*/
func (handler *Handler) SetLicense(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input setLicenseRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.SetLicense(request.Context(), actor, id, input.LicenseURI)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// POST /api/v1/submissions/{id}/assertAuthorship. Body: AuthorshipInput.
func (handler *Handler) AssertAuthorship(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input AuthorshipInput
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.AssertAuthorship(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// categoryResponse flattens the change result next to the submission id.
type categoryResponse struct {
	SubmissionID int64 `json:"submission_id"`
	category.ChangeResult
}

/*
POST /api/v1/submissions/{id}/setCategories.

Request:
  - body: {"primary_category": string, "secondary_categories": []string}

Response:
  - 200: {submission_id, old_primary, new_primary, old_secondaries, new_secondaries}
  - 400: ErrInvalidCategory: Unknown, inactive or missing codes
*/
func (handler *Handler) SetCategories(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input category.Target
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, result, err := handler.service.SetCategories(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, categoryResponse{SubmissionID: s.ID, ChangeResult: result})
}

/*
POST /api/v1/submissions/{id}/setMetadata.

Request:
  - body: MetadataInput (absent fields are left alone)

Response:
  - 200: {"submission": Submission, "updated_fields": []string}
*/
func (handler *Handler) SetMetadata(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input MetadataInput
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, changed, err := handler.service.SetMetadata(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"submission":     s,
		"updated_fields": changed,
	})
}

// POST /api/v1/submissions/{id}/verifyUser. Confirms the submitter's contact details.
func (handler *Handler) VerifyUser(writer http.ResponseWriter, request *http.Request) {
	handler.simple(writer, request, handler.service.VerifyUser)
}

// # Files

/*
POST /api/v1/submissions/{id}/files.

Request:
  - body: The compressed source package
  - Content-Type: application/gzip, application/x-gzip, application/tar,
    application/x-tar or application/tar+gzip

Response:
  - 200: Submission with source_content set
  - 400: ErrValidation: Unsupported content type
  - 503: ErrServiceUnavailable: File store offline
*/
func (handler *Handler) UploadSource(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contentType, _, err := mime.ParseMediaType(request.Header.Get(constants.HeaderContentType))
	if err != nil {
		contentType = ""
	}

	s, err := handler.service.UploadSource(request.Context(), actor, id, contentType, request.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// POST /api/v1/submissions/{id}/preview. Body: the compiled PDF.
func (handler *Handler) StorePreview(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.StorePreview(request.Context(), actor, id, request.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

type confirmPreviewRequest struct {
	PreviewChecksum string `json:"preview_checksum" validate:"required"`
}

/*
POST /api/v1/submissions/{id}/confirmPreview.

Response:
  - 200: Submission
  - 409: ErrConflict: The preview changed since the checksum was read
*/
func (handler *Handler) ConfirmPreview(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input confirmPreviewRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.ConfirmPreview(request.Context(), actor, id, input.PreviewChecksum)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// # Lifecycle

/*
POST /api/v1/submissions/{id}/submit.

Response:
  - 200: Submission in submitted status
  - 409: ErrConflict: A stage before confirmation is not done
*/
func (handler *Handler) Finalize(writer http.ResponseWriter, request *http.Request) {
	handler.simple(writer, request, handler.service.Finalize)
}

// POST /api/v1/submissions/{id}/unsubmit. Returns a submitted submission to working.
func (handler *Handler) Unfinalize(writer http.ResponseWriter, request *http.Request) {
	handler.simple(writer, request, handler.service.Unfinalize)
}

// POST /api/v1/submissions/{id}/markProcessingForDeposit. Refused while on hold.
func (handler *Handler) MarkProcessingForDeposit(writer http.ResponseWriter, request *http.Request) {
	handler.simple(writer, request, handler.service.MarkProcessingForDeposit)
}

// POST /api/v1/submissions/{id}/unmarkProcessingForDeposit.
func (handler *Handler) UnmarkProcessingForDeposit(writer http.ResponseWriter, request *http.Request) {
	handler.simple(writer, request, handler.service.UnmarkProcessingForDeposit)
}

/*
POST /api/v1/submissions/{id}/markDeposited.

Request:
  - body: {"arxiv_id": string} (required for new papers)

Response:
  - 200: Submission in announced status with a new version reference
*/
func (handler *Handler) MarkDeposited(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input DepositInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.ArxivID != "" {
		if err := (&validate.Validator{}).ArxivID("arxiv_id", input.ArxivID).Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	s, err := handler.service.MarkDeposited(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// # Quality Control

// POST /api/v1/submissions/{id}/holds. Body: HoldInput.
func (handler *Handler) AddHold(writer http.ResponseWriter, request *http.Request) {
	handler.withHold(writer, request, handler.service.AddHold)
}

// POST /api/v1/submissions/{id}/waivers. Body: HoldInput.
func (handler *Handler) AddWaiver(writer http.ResponseWriter, request *http.Request) {
	handler.withHold(writer, request, handler.service.AddWaiver)
}

func (handler *Handler) withHold(writer http.ResponseWriter, request *http.Request, operation func(context.Context, Actor, int64, HoldInput) (*Submission, error)) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input HoldInput
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := operation(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// POST /api/v1/submissions/{id}/proposals. Body: Proposal (kind, category, comment).
func (handler *Handler) AddProposal(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Proposal
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.AddProposal(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// POST /api/v1/submissions/{id}/proposals/{eventID}/accept. Applies the proposal.
func (handler *Handler) AcceptProposal(writer http.ResponseWriter, request *http.Request) {
	handler.decideProposal(writer, request, true)
}

// POST /api/v1/submissions/{id}/proposals/{eventID}/reject.
func (handler *Handler) RejectProposal(writer http.ResponseWriter, request *http.Request) {
	handler.decideProposal(writer, request, false)
}

func (handler *Handler) decideProposal(writer http.ResponseWriter, request *http.Request, accept bool) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.DecideProposal(request.Context(), actor, id, requestutil.Param(request, "eventID"), accept)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// POST /api/v1/submissions/{id}/annotations. Body: Annotation with one variant.
func (handler *Handler) AddAnnotation(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Annotation
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.AddAnnotation(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// POST /api/v1/submissions/{id}/flags. Body: Flag.
func (handler *Handler) AddFlag(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Flag
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.AddFlag(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

type commentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// POST /api/v1/submissions/{id}/comments. Body: {"body": string}.
func (handler *Handler) AddComment(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input commentRequest
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.AddComment(request.Context(), actor, id, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}

// POST /api/v1/submissions/{id}/processes. Body: ProcessInput.
func (handler *Handler) ReportProcess(writer http.ResponseWriter, request *http.Request) {
	actor, id, err := target(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ProcessInput
	if err := requestutil.DecodeAndValidate(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	s, err := handler.service.ReportProcess(request.Context(), actor, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, s)
}
