package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/model"
	"docuchat/internal/rag"
	"docuchat/internal/transport/http/response"
)

type FileHandler struct {
	fileService *app.FileService
}

func NewFileHandler(fileService *app.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

type filePayload struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploaded_at"`
}

func toFilePayload(doc *model.Document) filePayload {
	return filePayload{
		ID:         doc.ID,
		Name:       doc.Name,
		Size:       doc.Size,
		UploadedAt: doc.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "a file field is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "cannot read uploaded file")
		return
	}
	defer src.Close()

	result, err := h.fileService.Upload(userID, fileHeader.Filename, fileHeader.Size, src)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "a valid file name is required")
		case errors.Is(err, app.ErrFileType):
			response.Error(c, http.StatusBadRequest, "only PDF files are allowed")
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, "file too large")
		case errors.Is(err, app.ErrTooManyFiles):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	response.OK(c, "file uploaded", gin.H{
		"file":       toFilePayload(result.Document),
		"file_count": result.FileCount,
	})
}

func (h *FileHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	docs, err := h.fileService.List(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list files failed")
		return
	}

	files := make([]filePayload, len(docs))
	for i := range docs {
		files[i] = toFilePayload(&docs[i])
	}
	response.OK(c, "ok", gin.H{
		"files": files,
		"count": len(files),
	})
}

func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	documentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || documentID == 0 {
		response.Error(c, http.StatusBadRequest, "invalid file id")
		return
	}

	if err := h.fileService.Delete(userID, uint(documentID)); err != nil {
		switch {
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, "file not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "invalid file id")
		default:
			response.Error(c, http.StatusInternalServerError, "delete file failed")
		}
		return
	}
	response.OK(c, "file deleted", nil)
}

func (h *FileHandler) Process(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	passageCount, err := h.fileService.Process(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFilesToIndex):
			response.Error(c, http.StatusBadRequest, "no files uploaded")
		case errors.Is(err, rag.ErrLoad),
			errors.Is(err, rag.ErrChunking),
			errors.Is(err, rag.ErrEmbedding),
			errors.Is(err, rag.ErrIndex):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "processing failed")
		}
		return
	}

	response.OK(c, "files processed", gin.H{
		"passage_count": passageCount,
	})
}
