// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// VersionRef points at an immutable announced snapshot.
type VersionRef struct {
	Version    int       `json:"version"`
	SnapshotID int64     `json:"snapshot_id"`
	Announced  time.Time `json:"announced"`
}

// Snapshot is a frozen copy of a submission as announced.
type Snapshot struct {
	ID           int64       `json:"id"`
	SubmissionID int64       `json:"submission_id"`
	Version      int         `json:"version"`
	Submission   *Submission `json:"submission"`
	Created      time.Time   `json:"created"`
}

// Arena holds snapshots by id for the memory backend. Submissions reference
// entries through [VersionRef], never by pointer.
type Arena struct {
	mutex     sync.RWMutex
	nextID    int64
	snapshots map[int64][]byte
	meta      map[int64]Snapshot
}

// NewArena returns an empty [Arena].
func NewArena() *Arena {
	return &Arena{snapshots: map[int64][]byte{}, meta: map[int64]Snapshot{}}
}

// Put freezes s and returns the new snapshot id.
func (arena *Arena) Put(s *Submission, now time.Time) (int64, error) {
	frozen, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("submission: failed to encode snapshot: %w", err)
	}

	arena.mutex.Lock()
	defer arena.mutex.Unlock()

	arena.nextID++
	arena.snapshots[arena.nextID] = frozen
	arena.meta[arena.nextID] = Snapshot{
		ID:           arena.nextID,
		SubmissionID: s.ID,
		Version:      s.Version,
		Created:      now,
	}
	return arena.nextID, nil
}

// Get returns a fresh copy of the snapshot with the given id.
func (arena *Arena) Get(id int64) (*Snapshot, bool, error) {
	arena.mutex.RLock()
	frozen, ok := arena.snapshots[id]
	meta := arena.meta[id]
	arena.mutex.RUnlock()

	if !ok {
		return nil, false, nil
	}

	var thawed Submission
	if err := json.Unmarshal(frozen, &thawed); err != nil {
		return nil, false, fmt.Errorf("submission: failed to decode snapshot %d: %w", id, err)
	}
	thawed.EnsureCollections()
	meta.Submission = &thawed
	return &meta, true, nil
}
