package coverletters

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/server/respond"
	"resume-coach/internal/templates"
)

// Handler wires HTTP handlers to the cover letter service.
type Handler struct {
	Svc  *Service
	Gate middleware.Gate
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gate middleware.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

// RegisterRoutes attaches cover letter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cover-letter/generate", h.Gate.Protect(ratelimit.RouteCoverLetterGenerate, h.generate)...)
	rg.GET("/cover-letter", h.Gate.Authenticated(h.list)...)
	rg.GET("/cover-letter/:id", h.Gate.Authenticated(h.get)...)
	rg.POST("/cover-letter/:id/regenerate", h.Gate.Protect(ratelimit.RouteCoverLetterRegenerate, h.regenerate)...)
	rg.PATCH("/cover-letter/:id", h.Gate.Protect(ratelimit.RouteCoverLetterPatch, h.patch)...)
	rg.DELETE("/cover-letter/:id", h.Gate.Protect(ratelimit.RouteDelete, h.delete)...)
}

type generateRequest struct {
	TemplateID     string          `json:"templateId"`
	JobTitle       string          `json:"jobTitle"`
	CompanyName    string          `json:"companyName"`
	JobDescription string          `json:"jobDescription"`
	ResumeID       string          `json:"resumeId"`
	Header         json.RawMessage `json:"header"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	letter, err := h.Svc.Generate(c.Request.Context(), GenerateInput{
		OwnerID:        middleware.UserIDFromContext(c),
		TemplateID:     req.TemplateID,
		JobTitle:       req.JobTitle,
		CompanyName:    req.CompanyName,
		JobDescription: req.JobDescription,
		ResumeID:       req.ResumeID,
		Header:         req.Header,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.CoverLetterIDKey, letter.ID)
	respond.Success(c, http.StatusOK, gin.H{
		"id":        letter.ID,
		"content":   letter.Content,
		"updatedAt": letter.UpdatedAt,
	})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.CoverLetterIDKey, id)
	letter, err := h.Svc.Get(c.Request.Context(), id, middleware.UserIDFromContext(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{
		"coverLetter": letter,
		"template":    templates.LookupOrDefault(letter.TemplateID),
	})
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := 20, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	letters, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"coverLetters": letters})
}

type regenerateRequest struct {
	Section  string `json:"section"`
	Feedback string `json:"feedback"`
}

func (h *Handler) regenerate(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.CoverLetterIDKey, id)
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	letter, err := h.Svc.Regenerate(c.Request.Context(), id, middleware.UserIDFromContext(c), req.Section, req.Feedback)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{
		"content":   letter.Content,
		"updatedAt": letter.UpdatedAt,
	})
}

type patchRequest struct {
	Content   json.RawMessage `json:"content"`
	UpdatedAt string          `json:"updatedAt"`
}

func (h *Handler) patch(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.CoverLetterIDKey, id)
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	expected, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(req.UpdatedAt))
	if err != nil {
		respond.Fail(c, apperr.Validation("updatedAt must be an RFC 3339 timestamp"))
		return
	}
	updatedAt, err := h.Svc.Patch(c.Request.Context(), id, middleware.UserIDFromContext(c), req.Content, expected)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"updatedAt": updatedAt})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.CoverLetterIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), id, middleware.UserIDFromContext(c)); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{})
}
