package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codoraai-coder/marketing-agent/internal/http/response"
	"github.com/codoraai-coder/marketing-agent/internal/services"
)

type BlogHandler struct {
	blogs services.BlogService
}

func NewBlogHandler(blogs services.BlogService) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

type topicReq struct {
	Topic string `json:"topic"`
}

// POST /api/v1/generate/blog_post
func (h *BlogHandler) GenerateBlogPost(c *gin.Context) {
	var req topicReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.blogs.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/v1/runs/:id
func (h *BlogHandler) GetRun(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	run, err := h.blogs.GetRun(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	if run == nil {
		response.RespondError(c, http.StatusNotFound, "run_not_found", fmt.Errorf("no run %q", id))
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

// GET /api/v1/runs?limit=20
func (h *BlogHandler) ListRuns(c *gin.Context) {
	limit := 20
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	list, err := h.blogs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"runs": list})
}
