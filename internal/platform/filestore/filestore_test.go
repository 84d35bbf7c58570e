// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package filestore_test

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/filestore"
)

func newStore(t *testing.T) (*filestore.FS, string) {
	t.Helper()
	root := t.TempDir()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return filestore.New(root, 5*time.Millisecond, logger), root
}

func expectedChecksum(content string) string {
	sum := md5.Sum([]byte(content))
	return base64.URLEncoding.EncodeToString(sum[:])
}

/*
TestFS_StoreSourcePackage writes into the sharded layout and reports the checksum.
*/
func TestFS_StoreSourcePackage(t *testing.T) {
	store, root := newStore(t)
	ctx := context.Background()

	assert.False(t, store.DoesSourceExist(65393829))

	receipt, err := store.StoreSourcePackage(ctx, 65393829, strings.NewReader("tarball bytes"))
	require.NoError(t, err)

	assert.Equal(t, expectedChecksum("tarball bytes"), receipt.Checksum)
	assert.Equal(t, int64(len("tarball bytes")), receipt.Size)
	assert.FileExists(t, filepath.Join(root, "6539", "65393829", "65393829.tar.gz"))
	assert.True(t, store.DoesSourceExist(65393829))

	checksum, err := store.SourceChecksum(65393829)
	require.NoError(t, err)
	assert.Equal(t, receipt.Checksum, checksum)

	entries, err := os.ReadDir(filepath.Join(root, "6539", "65393829"))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}

func TestFS_ShortIDUsesWholeIDAsShard(t *testing.T) {
	store, root := newStore(t)

	_, err := store.StorePreview(context.Background(), 42, strings.NewReader("%PDF"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "42", "42", "42.pdf"))
	assert.True(t, store.DoesPreviewExist(42))
	assert.False(t, store.DoesSourceExist(42))
}

func TestFS_ChecksumOfMissingArtifact(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.PreviewChecksum(7)
	assert.ErrorIs(t, err, filestore.ErrNotStored)
}

/*
TestFS_LockedByAnotherWriter gives up once the context expires.
*/
func TestFS_LockedByAnotherWriter(t *testing.T) {
	store, root := newStore(t)

	directory := filepath.Join(root, "1234", "12345")
	require.NoError(t, os.MkdirAll(directory, 0o755))
	holder := flock.New(filepath.Join(directory, ".lock"))
	locked, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = store.StoreSourcePackage(ctx, 12345, strings.NewReader("late"))
	assert.Error(t, err)
	assert.False(t, store.DoesSourceExist(12345))
}

func TestFS_IsAvailable(t *testing.T) {
	store, _ := newStore(t)
	assert.True(t, store.IsAvailable())

	missing := filestore.New(filepath.Join(t.TempDir(), "absent"), time.Millisecond, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	assert.False(t, missing.IsAvailable())
}
