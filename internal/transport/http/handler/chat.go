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

type ChatHandler struct {
	chatService *app.ChatService
	authService *app.AuthService
}

func NewChatHandler(chatService *app.ChatService, authService *app.AuthService) *ChatHandler {
	return &ChatHandler{chatService: chatService, authService: authService}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatEntryPayload struct {
	ID        uint     `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	CreatedAt string   `json:"created_at"`
}

func toChatEntryPayload(entry *model.ChatEntry) chatEntryPayload {
	sources := entry.SourceList()
	if sources == nil {
		sources = []string{}
	}
	return chatEntryPayload{
		ID:        entry.ID,
		Question:  entry.Question,
		Answer:    entry.Answer,
		Sources:   sources,
		CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "message is required")
		return
	}

	entry, err := h.chatService.Send(c.Request.Context(), userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, "message is required")
		case errors.Is(err, app.ErrNoRetriever):
			response.Error(c, http.StatusBadRequest, "please upload and process files first")
		case errors.Is(err, rag.ErrEmbedding), errors.Is(err, rag.ErrSynthesis):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "chat failed")
		}
		return
	}

	payload := toChatEntryPayload(entry)
	response.OK(c, "ok", gin.H{
		"id":      payload.ID,
		"answer":  payload.Answer,
		"sources": payload.Sources,
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	entries, err := h.chatService.History(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "load history failed")
		return
	}

	history := make([]chatEntryPayload, len(entries))
	for i := range entries {
		history[i] = toChatEntryPayload(&entries[i])
	}
	response.OK(c, "ok", gin.H{
		"history": history,
		"count":   len(history),
	})
}

func (h *ChatHandler) ClearHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.chatService.ClearHistory(c.Request.Context(), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, "clear history failed")
		return
	}
	response.OK(c, "history cleared", nil)
}

func (h *ChatHandler) DeleteEntry(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	entryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || entryID == 0 {
		response.Error(c, http.StatusBadRequest, "invalid history entry id")
		return
	}

	if err := h.chatService.DeleteEntry(c.Request.Context(), userID, uint(entryID)); err != nil {
		switch {
		case errors.Is(err, app.ErrEntryNotFound):
			response.Error(c, http.StatusNotFound, "history entry not found")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "invalid history entry id")
		default:
			response.Error(c, http.StatusInternalServerError, "delete history entry failed")
		}
		return
	}
	response.OK(c, "history entry deleted", nil)
}

func (h *ChatHandler) Status(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "load user status failed")
		return
	}
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.chatService.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "load user status failed")
		return
	}
	response.OK(c, "ok", gin.H{
		"user":          userPayload{ID: user.ID, Email: user.Email},
		"has_files":     status.HasFiles,
		"has_retriever": status.HasRetriever,
		"has_history":   status.HasHistory,
		"file_count":    status.FileCount,
	})
}
