package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docuchat/internal/model"
	"docuchat/internal/repository"
	"docuchat/internal/session"
)

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrFileType       = errors.New("only PDF files are allowed")
	ErrFileTooLarge   = errors.New("file too large")
	ErrTooManyFiles   = errors.New("maximum file count reached")
	ErrNoFilesToIndex = errors.New("no files uploaded")
)

// FileService owns uploaded document records, their backing bytes under the
// upload root, and the processing handoff to the index manager.
type FileService struct {
	docRepo      *repository.DocumentRepository
	manager      *session.Manager
	uploadDir    string
	maxFiles     int
	maxFileBytes int64
}

func NewFileService(
	docRepo *repository.DocumentRepository,
	manager *session.Manager,
	uploadDir string,
	maxFiles int,
	maxFileBytes int64,
) *FileService {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	if maxFileBytes <= 0 {
		maxFileBytes = 16 << 20
	}
	return &FileService{
		docRepo:      docRepo,
		manager:      manager,
		uploadDir:    uploadDir,
		maxFiles:     maxFiles,
		maxFileBytes: maxFileBytes,
	}
}

type UploadResult struct {
	Document  *model.Document
	FileCount int64
}

// Upload validates and stores one file. An existing index is not touched; it
// serves stale results until the next process call rebuilds it.
func (s *FileService) Upload(userID uint, filename string, size int64, r io.Reader) (*UploadResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." {
		return nil, ErrInvalidInput
	}
	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		return nil, ErrFileType
	}
	if size > s.maxFileBytes {
		return nil, ErrFileTooLarge
	}

	count, err := s.docRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.maxFiles) {
		return nil, fmt.Errorf("%w: maximum of %d files allowed", ErrTooManyFiles, s.maxFiles)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	storagePath := filepath.Join(s.uploadDir, uuid.NewString()+"_"+name)
	dst, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("create upload file failed: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(r, s.maxFileBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(storagePath)
		return nil, fmt.Errorf("store upload failed: %w", err)
	}
	if written > s.maxFileBytes {
		_ = os.Remove(storagePath)
		return nil, ErrFileTooLarge
	}

	doc := &model.Document{
		UserID:      userID,
		Name:        name,
		StoragePath: storagePath,
		Size:        written,
	}
	if err := s.docRepo.Create(doc); err != nil {
		_ = os.Remove(storagePath)
		return nil, err
	}

	return &UploadResult{Document: doc, FileCount: count + 1}, nil
}

func (s *FileService) List(userID uint) ([]model.Document, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.docRepo.ListByUserID(userID)
}

// Delete removes the backing bytes and the record. Emptying the user's file
// set also drops the served retriever and the persisted index artifact.
func (s *FileService) Delete(userID, documentID uint) error {
	if userID == 0 || documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docRepo.GetByIDAndUserID(documentID, userID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrFileNotFound
	}

	if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file failed: %w", err)
	}
	if err := s.docRepo.DeleteByIDAndUserID(documentID, userID); err != nil {
		return err
	}

	remaining, err := s.docRepo.CountByUserID(userID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return s.manager.Drop(userID)
	}
	return nil
}

// Process rebuilds the user's index from the full current file set.
func (s *FileService) Process(ctx context.Context, userID uint) (int, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	docs, err := s.docRepo.ListByUserID(userID)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, ErrNoFilesToIndex
	}

	files := make([]session.FileRef, len(docs))
	for i := range docs {
		files[i] = session.FileRef{Name: docs[i].Name, Path: docs[i].StoragePath}
	}
	return s.manager.Process(ctx, userID, files)
}
