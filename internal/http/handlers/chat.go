package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codoraai-coder/marketing-agent/internal/http/response"
	"github.com/codoraai-coder/marketing-agent/internal/modules/blog"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

type ChatHandler struct {
	log *logger.Logger
	gen blog.TextGenerator
}

func NewChatHandler(log *logger.Logger, gen blog.TextGenerator) *ChatHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatHandler{log: log.With("handler", "ChatHandler"), gen: gen}
}

type chatReq struct {
	Prompt string `json:"prompt"`
}

type chatResp struct {
	Text string `json:"text"`
}

// POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_prompt", fmt.Errorf("prompt is required"))
		return
	}
	text, err := h.gen.GenerateText(c.Request.Context(), "", prompt)
	if err != nil {
		h.log.Error("chat generation failed", "error", err)
		response.RespondError(c, http.StatusBadGateway, "generation_failed", err)
		return
	}
	response.RespondOK(c, chatResp{Text: text})
}
