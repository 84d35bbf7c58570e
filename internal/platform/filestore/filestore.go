// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package filestore keeps submission source packages and compiled previews on a
shared, sharded filesystem.

Layout:

	<root>/<first 4 digits of id>/<id>/<id>.tar.gz
	<root>/<first 4 digits of id>/<id>/<id>.pdf

Writes stream into a temporary file next to the target and are renamed into
place, so readers never observe a partial package. Every write for one
submission holds an advisory file lock (gofrs/flock) on <id>/.lock, which also
serializes writers running in other processes on the same volume.

Checksums are the URL-safe base64 encoding of the MD5 digest, the format the
downstream compilation and announcement services already compare against.
*/
package filestore

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
)

// ErrNotStored is returned when the requested artifact was never written.
var ErrNotStored = errors.New("filestore: artifact not stored")

const (
	sourceExtension  = ".tar.gz"
	previewExtension = ".pdf"
	lockFileName     = ".lock"
	shardWidth       = 4
	dirMode          = 0o2775
	fileMode         = 0o664
)

// Receipt describes a stored artifact.
type Receipt struct {
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}

// FS is the filesystem-backed store.
type FS struct {
	root       string
	retryDelay time.Duration
	logger     *slog.Logger
}

// New creates a store rooted at root. The directory is not created; an
// absent root makes [FS.IsAvailable] report false.
func New(root string, lockRetryDelay time.Duration, logger *slog.Logger) *FS {
	return &FS{root: root, retryDelay: lockRetryDelay, logger: logger}
}

// # Writes

// StoreSourcePackage writes the compressed source package for a submission.
func (store *FS) StoreSourcePackage(ctx context.Context, submissionID int64, content io.Reader) (Receipt, error) {
	return store.write(ctx, submissionID, store.sourcePath(submissionID), content)
}

// StorePreview writes the compiled preview PDF for a submission.
func (store *FS) StorePreview(ctx context.Context, submissionID int64, content io.Reader) (Receipt, error) {
	return store.write(ctx, submissionID, store.previewPath(submissionID), content)
}

func (store *FS) write(ctx context.Context, submissionID int64, target string, content io.Reader) (Receipt, error) {
	if submissionID <= 0 {
		return Receipt{}, fmt.Errorf("filestore: invalid submission id %d", submissionID)
	}

	directory := store.submissionDir(submissionID)
	if err := os.MkdirAll(directory, dirMode); err != nil {
		return Receipt{}, fmt.Errorf("filestore: failed to create %s: %w", directory, err)
	}

	// 1. Serialize writers for this submission
	lock := flock.New(filepath.Join(directory, lockFileName))
	locked, err := lock.TryLockContext(ctx, store.retryDelay)
	if err != nil {
		return Receipt{}, fmt.Errorf("filestore: failed to lock submission %d: %w", submissionID, err)
	}
	if !locked {
		return Receipt{}, fmt.Errorf("filestore: submission %d is locked by another writer", submissionID)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			store.logger.Warn("filestore_unlock_failed", slog.Int64("submission_id", submissionID), slog.Any("error", err))
		}
	}()

	// 2. Stream into a temporary file while hashing
	temporary, err := os.CreateTemp(directory, filepath.Base(target)+".*.tmp")
	if err != nil {
		return Receipt{}, fmt.Errorf("filestore: failed to create temporary file: %w", err)
	}
	defer os.Remove(temporary.Name())

	digest := md5.New()
	size, copyErr := io.Copy(io.MultiWriter(temporary, digest), &contextReader{ctx: ctx, reader: content})
	closeErr := temporary.Close()
	if copyErr != nil {
		return Receipt{}, fmt.Errorf("filestore: failed to write %s: %w", target, copyErr)
	}
	if closeErr != nil {
		return Receipt{}, fmt.Errorf("filestore: failed to flush %s: %w", target, closeErr)
	}

	// 3. Publish atomically
	if err := os.Chmod(temporary.Name(), fileMode); err != nil {
		return Receipt{}, fmt.Errorf("filestore: failed to set mode on %s: %w", target, err)
	}
	if err := os.Rename(temporary.Name(), target); err != nil {
		return Receipt{}, fmt.Errorf("filestore: failed to move %s into place: %w", target, err)
	}

	receipt := Receipt{Checksum: encode(digest), Size: size}
	store.logger.Info("filestore_artifact_stored",
		slog.Int64("submission_id", submissionID),
		slog.String("path", target),
		slog.Int64("size", size),
	)

	return receipt, nil
}

// # Reads

// SourceChecksum recomputes the checksum of the stored source package.
func (store *FS) SourceChecksum(submissionID int64) (string, error) {
	return checksumOf(store.sourcePath(submissionID))
}

// PreviewChecksum recomputes the checksum of the stored preview.
func (store *FS) PreviewChecksum(submissionID int64) (string, error) {
	return checksumOf(store.previewPath(submissionID))
}

// DoesSourceExist reports whether a source package has been stored.
func (store *FS) DoesSourceExist(submissionID int64) bool {
	return exists(store.sourcePath(submissionID))
}

// DoesPreviewExist reports whether a preview has been stored.
func (store *FS) DoesPreviewExist(submissionID int64) bool {
	return exists(store.previewPath(submissionID))
}

// IsAvailable reports whether the root volume is mounted.
func (store *FS) IsAvailable() bool {
	info, err := os.Stat(store.root)
	return err == nil && info.IsDir()
}

// # Layout

func (store *FS) submissionDir(submissionID int64) string {
	id := strconv.FormatInt(submissionID, 10)
	shard := id
	if len(shard) > shardWidth {
		shard = shard[:shardWidth]
	}
	return filepath.Join(store.root, shard, id)
}

func (store *FS) sourcePath(submissionID int64) string {
	id := strconv.FormatInt(submissionID, 10)
	return filepath.Join(store.submissionDir(submissionID), id+sourceExtension)
}

func (store *FS) previewPath(submissionID int64) string {
	id := strconv.FormatInt(submissionID, 10)
	return filepath.Join(store.submissionDir(submissionID), id+previewExtension)
}

// # Helpers

func checksumOf(path string) (string, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotStored
	}
	if err != nil {
		return "", fmt.Errorf("filestore: failed to open %s: %w", path, err)
	}
	defer file.Close()

	digest := md5.New()
	if _, err := io.Copy(digest, file); err != nil {
		return "", fmt.Errorf("filestore: failed to read %s: %w", path, err)
	}
	return encode(digest), nil
}

func encode(digest hash.Hash) string {
	return base64.URLEncoding.EncodeToString(digest.Sum(nil))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// contextReader stops a long upload once the request is cancelled.
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
