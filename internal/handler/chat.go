package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"agribuddy/internal/ai"
	"agribuddy/internal/model"
	"agribuddy/internal/repository"
	"agribuddy/internal/service"
)

// QuotaApology is sent verbatim when a provider runs out of quota.
const QuotaApology = "Kuota percakapan sudah habis :( Mohon tunggu sejenak dan coba lagi :D"

// ChatOrchestrator is the chat surface the handler needs from the service layer.
type ChatOrchestrator interface {
	Start(ctx context.Context, in *service.ChatInput) (*service.ChatResult, error)
	Continue(ctx context.Context, conversationID string, in *service.ChatInput) (*service.ChatResult, error)
}

// ChatHandler serves the chat endpoints
type ChatHandler struct {
	chat          ChatOrchestrator
	maxUploadSize int64
}

// NewChatHandler creates the chat handler
func NewChatHandler(chat ChatOrchestrator, maxUploadSize int64) *ChatHandler {
	return &ChatHandler{chat: chat, maxUploadSize: maxUploadSize}
}

// Start starts a new conversation
// @Summary      Start a conversation
// @Description  Creates a conversation from the first message and returns the assistant reply. Accepts JSON or multipart/form-data with an optional image attachment.
// @Tags         chat
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        message  formData  string  false  "User message"
// @Param        user_id  formData  string  true   "User ID"
// @Param        file     formData  file    false  "Image attachment"
// @Success      201  {object}  model.StartChatResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      429  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/v1/chat/start [post]
func (h *ChatHandler) Start(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	res, err := h.chat.Start(c.Request.Context(), in)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.StartChatResponse{
		ConversationID: res.ConversationID,
		Reply:          res.Reply,
		Source:         string(res.Source),
	})
}

// Message appends a message to an existing conversation
// @Summary      Continue a conversation
// @Description  Appends a message to an existing conversation and returns the assistant reply with full history context.
// @Tags         chat
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        conversationId  path      string  true   "Conversation ID"
// @Param        message         formData  string  false  "User message"
// @Param        user_id         formData  string  true   "User ID"
// @Param        file            formData  file    false  "Image attachment"
// @Success      200  {object}  model.ContinueChatResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      429  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/v1/chat/{conversationId}/message [post]
func (h *ChatHandler) Message(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	res, err := h.chat.Continue(c.Request.Context(), c.Param("conversationId"), in)
	if err != nil {
		writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ContinueChatResponse{
		Reply:  res.Reply,
		Source: string(res.Source),
	})
}

// bindInput reads the chat input from either a JSON body or a multipart
// form. A false return means the error response was already written.
func (h *ChatHandler) bindInput(c *gin.Context) (*service.ChatInput, bool) {
	var req model.StartChatRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return nil, false
	}

	in := &service.ChatInput{
		UserID:  req.UserID,
		Message: req.Message,
	}

	att, err := h.readAttachment(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40002,
			Message: "Invalid attachment",
			Detail:  err.Error(),
		})
		return nil, false
	}
	in.Attachment = att

	return in, true
}

// readAttachment pulls the optional image out of the multipart form and
// loads it into memory. JSON requests simply have no file part.
func (h *ChatHandler) readAttachment(c *gin.Context) (*model.Attachment, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		// no multipart body or no file field
		return nil, nil
	}
	if fh.Size > h.maxUploadSize {
		return nil, errors.New("attachment exceeds the upload size limit")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxUploadSize {
		return nil, errors.New("attachment exceeds the upload size limit")
	}

	return &model.Attachment{
		Data:     data,
		MIMEType: fh.Header.Get("Content-Type"),
		Filename: fh.Filename,
	}, nil
}

// writeChatError maps orchestration errors to the HTTP contract.
func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40001,
			Message: err.Error(),
		})
	case errors.Is(err, repository.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Code:    40401,
			Message: "Conversation not found",
		})
	case errors.Is(err, ai.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
			Code:    42901,
			Message: QuotaApology,
		})
	case errors.Is(err, service.ErrPersistence):
		log.Error().Err(err).Msg("chat persistence failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50002,
			Message: "Failed to save the conversation",
		})
	default:
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: "Failed to generate a response",
		})
	}
}
