package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"stagesight/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Upload and Delete", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewLocalStorage(dir, "http://localhost:8080/uploads/")
		require.NoError(t, err)

		stored, err := store.Upload(ctx, "payment-proofs/abc/proof.png", []byte("png-bytes"), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "payment-proofs/abc/proof.png", stored)

		data, err := os.ReadFile(filepath.Join(dir, "payment-proofs", "abc", "proof.png"))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))

		assert.Equal(t, "http://localhost:8080/uploads/payment-proofs/abc/proof.png", store.PublicURL(stored))

		require.NoError(t, store.Delete(ctx, stored))
		_, err = os.Stat(filepath.Join(dir, "payment-proofs", "abc", "proof.png"))
		assert.True(t, os.IsNotExist(err))

		// 重複刪除視為成功
		assert.NoError(t, store.Delete(ctx, stored))
	})

	t.Run("Path traversal stays inside dir", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewLocalStorage(dir, "http://localhost/uploads")
		require.NoError(t, err)

		stored, err := store.Upload(ctx, "../../etc/evil.txt", []byte("x"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "etc/evil.txt", stored)
		_, err = os.Stat(filepath.Join(dir, "etc", "evil.txt"))
		assert.NoError(t, err)
	})

	t.Run("Failed - empty path", func(t *testing.T) {
		store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
		require.NoError(t, err)
		_, err = store.Upload(ctx, "", []byte("x"), "text/plain")
		assert.Error(t, err)
	})

	t.Run("Failed - cancelled context", func(t *testing.T) {
		store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = store.Upload(cctx, "a.png", []byte("x"), "image/png")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
