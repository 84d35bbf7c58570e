// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auditlog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps entries in process memory. It backs the memory
// submission backend and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	seen    map[string]struct{}
	entries map[int64][]Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		seen:    map[string]struct{}{},
		entries: map[int64][]Entry{},
	}
}

func (repository *MemoryRepository) Append(_ context.Context, entry Entry) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.seen[entry.ID]; ok {
		return nil
	}
	repository.seen[entry.ID] = struct{}{}

	list := append(repository.entries[entry.SubmissionID], entry)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Created.Before(list[j].Created)
	})
	repository.entries[entry.SubmissionID] = list
	return nil
}

func (repository *MemoryRepository) ListBySubmission(_ context.Context, submissionID int64, limit, offset int) ([]*Entry, int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	list := repository.entries[submissionID]
	page := []*Entry{}
	for i := offset; i < len(list) && (limit <= 0 || len(page) < limit); i++ {
		entry := list[i]
		page = append(page, &entry)
	}
	return page, len(list), nil
}
