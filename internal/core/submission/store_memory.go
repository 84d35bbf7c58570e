// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/arxsub/internal/core/category"
	"github.com/taibuivan/arxsub/internal/platform/apperr"
)

// # In-Memory Repository

// MemoryRepository keeps submissions as JSON documents behind one mutex.
// Every mutation is serialized, so MutateOptions.Lock has no extra effect.
type MemoryRepository struct {
	mutex      sync.Mutex
	nextID     int64
	documents  map[int64][]byte
	categories map[int64][]category.Row
	papers     map[string]Document
	nextPaper  int64
	arena      *Arena
	now        func() time.Time
}

// NewMemoryRepository returns an empty process-local [Repository].
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		documents:  map[int64][]byte{},
		categories: map[int64][]category.Row{},
		papers:     map[string]Document{},
		arena:      NewArena(),
		now:        time.Now,
	}
}

// SeedDocument registers an announced paper and returns its id. The HTTP
// surface never creates papers directly.
func (repository *MemoryRepository) SeedDocument(document Document) int64 {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return repository.recordDocument(document)
}

func (repository *MemoryRepository) recordDocument(document Document) int64 {
	repository.nextPaper++
	document.ID = repository.nextPaper
	if document.Created.IsZero() {
		document.Created = repository.now()
	}
	repository.papers[document.PaperID] = document
	return document.ID
}

func (repository *MemoryRepository) Create(_ context.Context, s *Submission) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	repository.nextID++
	s.ID = repository.nextID

	frozen, err := json.Marshal(s)
	if err != nil {
		return apperr.Internal(fmt.Errorf("memory: failed to encode submission: %w", err))
	}
	repository.documents[s.ID] = frozen

	delta, _ := category.Reconcile(nil, category.Target{Primary: s.PrimaryCategory(), Secondaries: s.SecondaryCategories()})
	repository.categories[s.ID] = category.Apply(nil, delta)
	return nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id int64) (*Submission, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return repository.load(id)
}

func (repository *MemoryRepository) load(id int64) (*Submission, error) {
	frozen, ok := repository.documents[id]
	if !ok {
		return nil, apperr.NotFound("Submission")
	}

	var s Submission
	if err := json.Unmarshal(frozen, &s); err != nil {
		return nil, apperr.Internal(fmt.Errorf("memory: failed to decode submission %d: %w", id, err))
	}
	s.EnsureCollections()

	primary, secondaries := category.Split(repository.categories[id])
	s.SetClassification(primary, secondaries)
	return &s, nil
}

func (repository *MemoryRepository) ListByOwner(_ context.Context, ownerID string, filter Filter, limit, offset int) ([]*Submission, int, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	ids := make([]int64, 0, len(repository.documents))
	for id := range repository.documents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var matched []*Submission
	for _, id := range ids {
		s, err := repository.load(id)
		if err != nil {
			return nil, 0, err
		}
		if s.Owner.Identifier != ownerID {
			continue
		}
		if !filter.Matches(s.Status) {
			continue
		}
		matched = append(matched, s)
	}

	total := len(matched)
	if offset >= total {
		return []*Submission{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (repository *MemoryRepository) FindDocument(_ context.Context, paperID string) (*Document, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	document, ok := repository.papers[paperID]
	if !ok {
		return nil, apperr.NotFound("Document")
	}
	return &document, nil
}

func (repository *MemoryRepository) FindSnapshot(_ context.Context, snapshotID int64) (*Snapshot, error) {
	snapshot, ok, err := repository.arena.Get(snapshotID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.NotFound("Snapshot")
	}
	return snapshot, nil
}

func (repository *MemoryRepository) Mutate(ctx context.Context, id int64, _ MutateOptions, fn MutateFunc) (*Submission, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()

	s, err := repository.load(id)
	if err != nil {
		return nil, err
	}

	tx := &memoryTx{
		repository: repository,
		rows:       append([]category.Row(nil), repository.categories[id]...),
	}

	if err := fn(ctx, tx, s); err != nil {
		if errors.Is(err, ErrNothingToDo) {
			unchanged, loadErr := repository.load(id)
			if loadErr != nil {
				return nil, loadErr
			}
			return unchanged, err
		}
		return nil, err
	}

	// Commit
	frozen, err := json.Marshal(s)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("memory: failed to encode submission: %w", err))
	}
	repository.documents[id] = frozen
	repository.categories[id] = tx.rows
	for _, document := range tx.documents {
		repository.recordDocument(document)
	}

	return repository.load(id)
}

func (repository *MemoryRepository) Ping(context.Context) error {
	return nil
}

// memoryTx buffers row writes until the mutation commits. Snapshots go to the
// arena immediately; a rolled back mutation leaves an unreferenced entry.
type memoryTx struct {
	repository *MemoryRepository
	rows       []category.Row
	documents  []Document
}

func (tx *memoryTx) CategoryRows(context.Context) ([]category.Row, error) {
	return append([]category.Row(nil), tx.rows...), nil
}

func (tx *memoryTx) ApplyCategoryDelta(_ context.Context, delta category.Delta) error {
	tx.rows = category.Apply(tx.rows, delta)
	return nil
}

func (tx *memoryTx) SaveSnapshot(_ context.Context, s *Submission) (int64, error) {
	id, err := tx.repository.arena.Put(s, tx.repository.now())
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return id, nil
}

func (tx *memoryTx) RecordDocument(_ context.Context, document Document) (int64, error) {
	if _, exists := tx.repository.papers[document.PaperID]; exists {
		return 0, apperr.Conflict("Document already exists")
	}
	tx.documents = append(tx.documents, document)
	return tx.repository.nextPaper + int64(len(tx.documents)), nil
}
