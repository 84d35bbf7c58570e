// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auditlog

import (
	"context"
	"strconv"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
)

// Service reads the administrative log.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of the log for a submission, oldest entry first.
func (service *Service) List(ctx context.Context, submissionID int64, limit, offset int) ([]*Entry, int, error) {
	if submissionID <= 0 {
		return nil, 0, apperr.InvalidIdentifier("submission", strconv.FormatInt(submissionID, 10))
	}
	return service.repo.ListBySubmission(ctx, submissionID, limit, offset)
}
