// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workflow

import (
	"context"
	"maps"
	"sync"
)

// SeenStore persists the per-submission seen map between requests.
type SeenStore interface {
	// Load returns the seen map of a submission, empty when nothing was recorded.
	Load(ctx context.Context, submissionID int64) (map[string]bool, error)

	// MarkSeen records one seen key.
	MarkSeen(ctx context.Context, submissionID int64, key string) error
}

// MemorySeenStore keeps seen maps in process memory.
type MemorySeenStore struct {
	mutex sync.RWMutex
	seen  map[int64]map[string]bool
}

// NewMemorySeenStore returns an empty [MemorySeenStore].
func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{seen: map[int64]map[string]bool{}}
}

func (store *MemorySeenStore) Load(_ context.Context, submissionID int64) (map[string]bool, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	seen := maps.Clone(store.seen[submissionID])
	if seen == nil {
		seen = map[string]bool{}
	}
	return seen, nil
}

func (store *MemorySeenStore) MarkSeen(_ context.Context, submissionID int64, key string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.seen[submissionID] == nil {
		store.seen[submissionID] = map[string]bool{}
	}
	store.seen[submissionID][key] = true
	return nil
}
