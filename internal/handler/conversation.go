package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agribuddy/internal/model"
	"agribuddy/internal/repository"
)

// ConversationHandler serves the conversation management endpoints
type ConversationHandler struct {
	repo *repository.ConversationRepo
}

// NewConversationHandler creates the conversation handler
func NewConversationHandler(repo *repository.ConversationRepo) *ConversationHandler {
	return &ConversationHandler{repo: repo}
}

// List returns a user's conversations, most recently updated first
// @Summary      List conversations
// @Tags         conversations
// @Produce      json
// @Param        user_id  query     string  true   "User ID"
// @Param        limit    query     int     false  "Page size (default 20)"
// @Param        offset   query     int     false  "Page offset"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  model.ErrorResponse
// @Router       /api/v1/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40002,
			Message: "user_id is required",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	convs, err := h.repo.ListByUserID(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: "Failed to list conversations",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": convs,
		"total":         len(convs),
	})
}

// Get returns one conversation with its full message history
// @Summary      Get a conversation
// @Tags         conversations
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  model.ErrorResponse
// @Router       /api/v1/conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	conv, err := h.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Code:    40401,
				Message: "Conversation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: "Failed to load conversation",
			Detail:  err.Error(),
		})
		return
	}

	messages, err := h.repo.History(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: "Failed to load messages",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"messages":     messages,
	})
}

// Delete removes a conversation and its messages
// @Summary      Delete a conversation
// @Tags         conversations
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  model.ErrorResponse
// @Router       /api/v1/conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	err := h.repo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Code:    40401,
				Message: "Conversation not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: "Failed to delete conversation",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
