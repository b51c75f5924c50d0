package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agribuddy/internal/model"
	"agribuddy/internal/repository"
)

// KnowledgeHandler exposes the curated knowledge base
type KnowledgeHandler struct {
	repo *repository.KnowledgeRepo
}

// NewKnowledgeHandler creates the knowledge handler
func NewKnowledgeHandler(repo *repository.KnowledgeRepo) *KnowledgeHandler {
	return &KnowledgeHandler{repo: repo}
}

// List returns every knowledge entry
// @Summary      List knowledge entries
// @Tags         knowledge
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  model.ErrorResponse
// @Router       /api/v1/knowledge [get]
func (h *KnowledgeHandler) List(c *gin.Context) {
	entries, err := h.repo.ListEntries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: "Failed to list knowledge entries",
			Detail:  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}
