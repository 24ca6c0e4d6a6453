package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codoraai-coder/marketing-agent/internal/http/response"
	"github.com/codoraai-coder/marketing-agent/internal/modules/blog"
)

type SearchKeyHandler struct {
	validator blog.KeyValidator
}

func NewSearchKeyHandler(validator blog.KeyValidator) *SearchKeyHandler {
	return &SearchKeyHandler{validator: validator}
}

// POST /api/v1/search/key/reset
func (h *SearchKeyHandler) Reset(c *gin.Context) {
	h.validator.Reset()
	response.RespondOK(c, gin.H{"valid": h.validator.Valid(c.Request.Context())})
}
