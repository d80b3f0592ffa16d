package app

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/rag"
	"docuchat/internal/repository"
	"docuchat/internal/session"
)

func newFileService(t *testing.T, loader rag.Loader, maxFiles int, maxBytes int64) (*FileService, *session.Manager) {
	t.Helper()
	db := newTestDB(t)
	manager := newTestManager(t, loader)
	svc := NewFileService(repository.NewDocumentRepository(db), manager, t.TempDir(), maxFiles, maxBytes)
	return svc, manager
}

func pdfUnits() []rag.Unit {
	return []rag.Unit{{Text: "Paris is the capital of France. It sits on the Seine.", Page: 1}}
}

func TestUploadValidation(t *testing.T) {
	svc, _ := newFileService(t, &fixedLoader{units: pdfUnits()}, 5, 1024)

	_, err := svc.Upload(0, "doc.pdf", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(1, "", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(1, "notes.txt", 10, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileType)

	_, err = svc.Upload(1, "big.pdf", 2048, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadRejectsOversizedStream(t *testing.T) {
	svc, _ := newFileService(t, &fixedLoader{units: pdfUnits()}, 5, 64)

	// declared size lies; the stream itself is over the ceiling
	body := strings.NewReader(strings.Repeat("a", 200))
	_, err := svc.Upload(1, "doc.pdf", 10, body)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadStoresFileAndRecord(t *testing.T) {
	svc, _ := newFileService(t, &fixedLoader{units: pdfUnits()}, 5, 1024)

	result, err := svc.Upload(1, "../../escape.pdf", 11, strings.NewReader("pdf content"))
	require.NoError(t, err)
	assert.Equal(t, "escape.pdf", result.Document.Name)
	assert.Equal(t, int64(11), result.Document.Size)
	assert.Equal(t, int64(1), result.FileCount)

	stored, err := os.ReadFile(result.Document.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, "pdf content", string(stored))

	docs, err := svc.List(1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "escape.pdf", docs[0].Name)
}

func TestUploadEnforcesFileCap(t *testing.T) {
	svc, _ := newFileService(t, &fixedLoader{units: pdfUnits()}, 2, 1024)

	for i := 0; i < 2; i++ {
		_, err := svc.Upload(1, "doc.pdf", 4, strings.NewReader("data"))
		require.NoError(t, err)
	}

	_, err := svc.Upload(1, "doc.pdf", 4, strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrTooManyFiles)

	// another user is unaffected by the first user's cap
	_, err = svc.Upload(2, "doc.pdf", 4, strings.NewReader("data"))
	assert.NoError(t, err)
}

func TestDeleteFile(t *testing.T) {
	svc, manager := newFileService(t, &fixedLoader{units: pdfUnits()}, 5, 1024)

	assert.ErrorIs(t, svc.Delete(1, 999), ErrFileNotFound)

	first, err := svc.Upload(1, "a.pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)
	second, err := svc.Upload(1, "b.pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, manager.Has(1))

	// deleting one of two files keeps the index serving
	require.NoError(t, svc.Delete(1, first.Document.ID))
	assert.True(t, manager.Has(1))
	_, err = os.Stat(first.Document.StoragePath)
	assert.True(t, os.IsNotExist(err))

	// deleting the last file drops the index as well
	require.NoError(t, svc.Delete(1, second.Document.ID))
	assert.False(t, manager.Has(1))

	docs, err := svc.List(1)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDeleteOtherUsersFile(t *testing.T) {
	svc, _ := newFileService(t, &fixedLoader{units: pdfUnits()}, 5, 1024)

	result, err := svc.Upload(1, "a.pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(2, result.Document.ID), ErrFileNotFound)
}

func TestProcessRequiresFiles(t *testing.T) {
	svc, _ := newFileService(t, &fixedLoader{units: pdfUnits()}, 5, 1024)

	_, err := svc.Process(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoFilesToIndex)
}

func TestProcessBuildsRetriever(t *testing.T) {
	svc, manager := newFileService(t, &fixedLoader{units: pdfUnits()}, 5, 1024)

	_, err := svc.Upload(1, "geo.pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)

	count, err := svc.Process(context.Background(), 1)
	require.NoError(t, err)
	assert.Greater(t, count, 0)
	require.True(t, manager.Has(1))

	passages, err := manager.Retriever(1).Retrieve(context.Background(), "capital of France")
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	assert.Equal(t, "geo.pdf", passages[0].Source)
}
