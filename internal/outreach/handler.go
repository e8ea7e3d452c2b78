package outreach

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the outreach service.
type Handler struct {
	Svc  *Service
	Gate middleware.Gate
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gate middleware.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

// RegisterRoutes attaches outreach routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/outreach/generate", h.Gate.Protect(ratelimit.RouteOutreachGenerate, h.generate)...)
	rg.GET("/outreach", h.Gate.Authenticated(h.list)...)
	rg.GET("/outreach/:id", h.Gate.Authenticated(h.get)...)
	rg.POST("/outreach/:id/regenerate", h.Gate.Protect(ratelimit.RouteOutreachRegenerate, h.regenerate)...)
	rg.DELETE("/outreach/:id", h.Gate.Protect(ratelimit.RouteDelete, h.delete)...)
}

type generateRequest struct {
	Channel        string `json:"channel"`
	Tone           string `json:"tone"`
	JobTitle       string `json:"jobTitle"`
	CompanyName    string `json:"companyName"`
	RecipientName  string `json:"recipientName"`
	JobDescription string `json:"jobDescription"`
	ResumeID       string `json:"resumeId"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	m, err := h.Svc.Generate(c.Request.Context(), GenerateInput{
		OwnerID:        middleware.UserIDFromContext(c),
		Channel:        req.Channel,
		Tone:           req.Tone,
		JobTitle:       req.JobTitle,
		CompanyName:    req.CompanyName,
		RecipientName:  req.RecipientName,
		JobDescription: req.JobDescription,
		ResumeID:       req.ResumeID,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.OutreachIDKey, m.ID)
	respond.Success(c, http.StatusOK, draftBody(m, gin.H{"id": m.ID}))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.OutreachIDKey, id)
	m, err := h.Svc.Get(c.Request.Context(), id, middleware.UserIDFromContext(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"outreach": m})
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := 20, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"outreach": items})
}

type regenerateRequest struct {
	UserFeedback string `json:"userFeedback"`
}

func (h *Handler) regenerate(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.OutreachIDKey, id)
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	m, err := h.Svc.Regenerate(c.Request.Context(), id, middleware.UserIDFromContext(c), req.UserFeedback)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, draftBody(m, gin.H{}))
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.OutreachIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), id, middleware.UserIDFromContext(c)); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{})
}

// draftBody adds content and, for email channels, subject.
func draftBody(m Message, body gin.H) gin.H {
	body["content"] = m.Content
	if m.Subject != "" {
		body["subject"] = m.Subject
	}
	return body
}
