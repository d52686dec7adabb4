package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"casedesk/internal/app"
	"casedesk/internal/transport/http/response"
)

type ChatHandler struct {
	chatService  *app.ChatService
	exposeErrors bool
}

type SendMessageRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

func NewChatHandler(chatService *app.ChatService, exposeErrors bool) *ChatHandler {
	return &ChatHandler{chatService: chatService, exposeErrors: exposeErrors}
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	response.OK(c, http.StatusOK, gin.H{"messages": h.chatService.ListMessages()})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Sender and content are required", err, h.exposeErrors)
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		Sender:  req.Sender,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Sender and content are required", err, h.exposeErrors)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to send message", err, h.exposeErrors)
		}
		return
	}

	response.OK(c, http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    message,
	})
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	if err := h.chatService.DeleteMessage(c.Param("id")); err != nil {
		switch {
		case errors.Is(err, app.ErrMessageNotFound), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusNotFound, "Message not found", err, h.exposeErrors)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to delete message", err, h.exposeErrors)
		}
		return
	}

	response.Message(c, http.StatusOK, "Message deleted successfully")
}
