// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/filestore"
	"github.com/taibuivan/arxsub/internal/platform/validate"
	"github.com/taibuivan/arxsub/pkg/pointer"
)

// # Stage Operations
//
// Each operation is a no-op when the submission already holds the requested
// value. The caller receives the unchanged state and no event is published.

// AcceptPolicy records agreement to the active submission policy.
func (service *Service) AcceptPolicy(ctx context.Context, actor Actor, id int64, policyID int) (*Submission, error) {
	if policyID != service.options.ActivePolicyID {
		return nil, apperr.InvalidPolicy(policyID, service.options.ActivePolicyID)
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventPolicyAccepted, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}
		if pointer.Val(s.SubmitterAcceptsPolicy) && pointer.Val(s.AgreementID) == policyID {
			return nil, ErrNothingToDo
		}

		s.SubmitterAcceptsPolicy = pointer.To(true)
		s.AgreementID = pointer.To(policyID)
		return map[string]int{"policy_id": policyID}, nil
	})
}

// SetLicense selects one of the recognised licenses.
func (service *Service) SetLicense(ctx context.Context, actor Actor, id int64, uri string) (*Submission, error) {
	license, err := LicenseFor(uri)
	if err != nil {
		return nil, err
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventLicenseSet, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}
		if s.License != nil && s.License.URI == license.URI {
			return nil, ErrNothingToDo
		}

		s.License = &license
		return license, nil
	})
}

// AuthorshipInput asserts that the submitter is an author, or is authorized
// to submit on an author's behalf.
type AuthorshipInput struct {
	IAmAuthor            bool   `json:"i_am_author"`
	IAmAuthorizedToProxy bool   `json:"i_am_authorized_to_proxy"`
	AuthorEmail          string `json:"author_email" validate:"omitempty,email"`
}

/*
AssertAuthorship records direct authorship or a proxy submission.

Description: A proxy submitter must confirm authorization and name the
author's email address. The submitter then becomes the proxy agent and the
author's address is kept beside it; naming a different author is a change.
*/
func (service *Service) AssertAuthorship(ctx context.Context, actor Actor, id int64, input AuthorshipInput) (*Submission, error) {
	authorEmail := strings.TrimSpace(input.AuthorEmail)
	if !input.IAmAuthor {
		v := &validate.Validator{}
		v.Custom("i_am_authorized_to_proxy", !input.IAmAuthorizedToProxy, "Proxy submitters must confirm they are authorized")
		v.Custom("author_email", authorEmail == "", "Proxy submitters must give the author's email")
		if authorEmail != "" {
			v.Email("author_email", authorEmail)
		}
		if err := v.Err(); err != nil {
			return nil, err
		}
	}

	return service.mutate(ctx, actor, id, MutateOptions{}, EventAuthorshipAsserted, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}

		if input.IAmAuthor {
			if pointer.Val(s.SubmitterIsAuthor) && s.Proxy == nil && s.ProxyAuthorEmail == "" {
				return nil, ErrNothingToDo
			}
			s.SubmitterIsAuthor = pointer.To(true)
			s.Proxy = nil
			s.ProxyAuthorEmail = ""
			return AuthorshipInput{IAmAuthor: true}, nil
		}

		proxy := actor.Agent()
		if s.SubmitterIsAuthor != nil && !*s.SubmitterIsAuthor &&
			s.Proxy != nil && s.Proxy.Identifier == proxy.Identifier &&
			strings.EqualFold(s.ProxyAuthorEmail, authorEmail) {
			return nil, ErrNothingToDo
		}
		s.SubmitterIsAuthor = pointer.To(false)
		s.Proxy = &proxy
		s.ProxyAuthorEmail = authorEmail
		return AuthorshipInput{IAmAuthorizedToProxy: true, AuthorEmail: authorEmail}, nil
	})
}

/*
SetCategories reconciles the classification rows with target.

Description: Codes are checked against the taxonomy before the transaction.
Inside it the current rows are read, the delta computed and written, so the
delta never races a concurrent reconciliation.

Returns:
  - *Submission: The saved state
  - category.ChangeResult: Old and new primary/secondaries, empty when unchanged
  - error: apperr.InvalidCategory for unknown, inactive or missing codes
*/
func (service *Service) SetCategories(ctx context.Context, actor Actor, id int64, target category.Target) (*Submission, category.ChangeResult, error) {
	if err := service.taxonomy.Validate(target); err != nil {
		return nil, category.ChangeResult{}, err
	}

	result := category.ChangeResult{OldSecondaries: []string{}, NewSecondaries: []string{}}

	s, err := service.mutate(ctx, actor, id, MutateOptions{}, EventCategoriesSet, func(ctx context.Context, tx Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}

		rows, err := tx.CategoryRows(ctx)
		if err != nil {
			return nil, err
		}

		delta, change := category.Reconcile(rows, target)
		if delta.IsEmpty() {
			return nil, ErrNothingToDo
		}
		if err := tx.ApplyCategoryDelta(ctx, delta); err != nil {
			return nil, err
		}

		primary, secondaries := category.Split(category.Apply(rows, delta))
		s.SetClassification(primary, secondaries)

		result = change
		return change, nil
	})
	if err != nil {
		return nil, category.ChangeResult{}, err
	}

	return s, result, nil
}

// MetadataInput carries the fields to change. Nil fields are left alone.
type MetadataInput struct {
	Title          *string   `json:"title" validate:"omitempty,max=500"`
	Abstract       *string   `json:"abstract" validate:"omitempty,max=5000"`
	Authors        *[]Author `json:"authors"`
	AuthorsDisplay *string   `json:"authors_display"`
	Comments       *string   `json:"comments" validate:"omitempty,max=1000"`
	DOI            *string   `json:"doi"`
	MSCClass       *string   `json:"msc_class"`
	ACMClass       *string   `json:"acm_class"`
	ReportNum      *string   `json:"report_num"`
	JournalRef     *string   `json:"journal_ref"`
}

/*
SetMetadata compares the input field by field and writes what differs.

Returns:
  - *Submission: The saved state
  - []string: Names of the fields that changed, empty when nothing did
*/
func (service *Service) SetMetadata(ctx context.Context, actor Actor, id int64, input MetadataInput) (*Submission, []string, error) {
	changed := []string{}

	s, err := service.mutate(ctx, actor, id, MutateOptions{}, EventMetadataSet, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}
		changed = changed[:0]

		metadata := s.Metadata
		fields := []struct {
			name   string
			target *string
			value  *string
		}{
			{"title", &metadata.Title, input.Title},
			{"abstract", &metadata.Abstract, input.Abstract},
			{"comments", &metadata.Comments, input.Comments},
			{"doi", &metadata.DOI, input.DOI},
			{"msc_class", &metadata.MSCClass, input.MSCClass},
			{"acm_class", &metadata.ACMClass, input.ACMClass},
			{"report_num", &metadata.ReportNum, input.ReportNum},
			{"journal_ref", &metadata.JournalRef, input.JournalRef},
		}
		for _, field := range fields {
			if field.value == nil {
				continue
			}
			if value := normalizeText(*field.value); value != *field.target {
				*field.target = value
				changed = append(changed, field.name)
			}
		}

		// Authors are normalized and renumbered in the order given
		if input.Authors != nil {
			authors := make([]Author, 0, len(*input.Authors))
			for index, author := range *input.Authors {
				author.Order = index
				authors = append(authors, author.Normalize())
			}
			if !slices.Equal(authors, metadata.Authors) {
				metadata.Authors = authors
				changed = append(changed, "authors")
			}
		}

		display := metadata.AuthorsDisplay
		if input.AuthorsDisplay != nil {
			display = normalizeText(*input.AuthorsDisplay)
		} else if slices.Contains(changed, "authors") {
			display = AuthorsDisplay(metadata.Authors)
		}
		if display != metadata.AuthorsDisplay {
			metadata.AuthorsDisplay = display
			changed = append(changed, "authors_display")
		}

		if len(changed) == 0 {
			return nil, ErrNothingToDo
		}

		s.Metadata = metadata
		return map[string]any{"fields": changed, "metadata": metadata}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	return s, changed, nil
}

// VerifyUser records that the submitter confirmed their contact details.
func (service *Service) VerifyUser(ctx context.Context, actor Actor, id int64) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventUserVerified, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}
		if s.SubmitterContactVerified {
			return nil, ErrNothingToDo
		}

		s.SubmitterContactVerified = true
		return map[string]bool{"submitter_contact_verified": true}, nil
	})
}

// # Files

/*
UploadSource stores a compressed source package.

Description: The submission row is locked while the file is written when the
serialize-file-operations policy is on. A new upload invalidates the previous
preview and its confirmation. Packages over the size limit place a
source_oversize hold; a package within the limit releases the hold placed
automatically by an earlier upload.
*/
func (service *Service) UploadSource(ctx context.Context, actor Actor, id int64, contentType string, content io.Reader) (*Submission, error) {
	v := (&validate.Validator{}).Custom("content_type", !IsSourceContentType(contentType), fmt.Sprintf("Unsupported source package type %q", contentType))
	if err := v.Err(); err != nil {
		return nil, err
	}
	if !service.files.IsAvailable() {
		return nil, apperr.ServiceUnavailable("The file store is not available")
	}

	// The content is consumed once. A replayed mutation reuses the receipt.
	var stored *filestore.Receipt

	options := MutateOptions{Lock: service.options.SerializeFileOperations}
	return service.mutate(ctx, actor, id, options, EventSourceUploaded, func(ctx context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}

		if stored == nil {
			receipt, err := service.files.StoreSourcePackage(ctx, s.ID, content)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			stored = &receipt
		}
		receipt := *stored

		s.SourceContent = &SourceContent{
			Identifier:     fmt.Sprintf("%d", s.ID),
			Checksum:       receipt.Checksum,
			CompressedSize: receipt.Size,
			SourceFormat:   FormatUnknown,
			ContentType:    contentType,
		}
		s.IsSourceProcessed = false
		s.Preview = nil
		s.SubmitterConfirmedPreview = false

		switch {
		case receipt.Size > service.options.MaxSourceBytes && !hasHold(s, HoldSourceOversize):
			service.placeHold(s, actor, HoldSourceOversize, fmt.Sprintf("Source package is %d bytes", receipt.Size), true)
			service.logger.Warn("source_oversize_hold_placed",
				slog.Int64("submission_id", s.ID),
				slog.Int64("size", receipt.Size),
			)
		case receipt.Size <= service.options.MaxSourceBytes:
			if released := releaseAutomaticHolds(s, HoldSourceOversize); released > 0 {
				service.logger.Info("source_oversize_hold_released",
					slog.Int64("submission_id", s.ID),
					slog.Int64("size", receipt.Size),
				)
			}
		}

		return s.SourceContent, nil
	})
}

// StorePreview stores the compiled preview of the current source package.
func (service *Service) StorePreview(ctx context.Context, actor Actor, id int64, content io.Reader) (*Submission, error) {
	if !service.files.IsAvailable() {
		return nil, apperr.ServiceUnavailable("The file store is not available")
	}

	var stored *filestore.Receipt

	options := MutateOptions{Lock: service.options.SerializeFileOperations}
	return service.mutate(ctx, actor, id, options, EventPreviewStored, func(ctx context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}
		if s.SourceContent == nil {
			return nil, apperr.Unprocessable("No source package has been uploaded")
		}

		if stored == nil {
			receipt, err := service.files.StorePreview(ctx, s.ID, content)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			stored = &receipt
		}
		receipt := *stored

		s.Preview = &Preview{
			SourceID:        s.SourceContent.Identifier,
			SourceChecksum:  s.SourceContent.Checksum,
			PreviewChecksum: receipt.Checksum,
			SizeBytes:       receipt.Size,
			Added:           service.now(),
		}
		s.IsSourceProcessed = true
		s.SubmitterConfirmedPreview = false
		return s.Preview, nil
	})
}

// ConfirmPreview records that the submitter reviewed the preview with the
// given checksum. A stale checksum means the preview changed since.
func (service *Service) ConfirmPreview(ctx context.Context, actor Actor, id int64, previewChecksum string) (*Submission, error) {
	return service.mutate(ctx, actor, id, MutateOptions{}, EventPreviewConfirmed, func(_ context.Context, _ Tx, s *Submission) (any, error) {
		if err := ensureWorking(s); err != nil {
			return nil, err
		}
		if s.Preview == nil {
			return nil, apperr.Unprocessable("No preview has been generated")
		}
		if s.Preview.PreviewChecksum != previewChecksum {
			return nil, apperr.Conflict("The preview changed since it was reviewed")
		}
		if s.SubmitterConfirmedPreview {
			return nil, ErrNothingToDo
		}

		s.SubmitterConfirmedPreview = true
		return map[string]string{"preview_checksum": previewChecksum}, nil
	})
}
