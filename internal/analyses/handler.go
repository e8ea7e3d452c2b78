package analyses

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/documents"
	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/server/respond"
)

// multipart framing and form fields on top of the file itself
const formOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	Gate middleware.Gate
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gate middleware.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.Gate.Protect(ratelimit.RouteAnalyze, h.analyze)...)
	rg.GET("/resumes", h.Gate.Authenticated(h.list)...)
	rg.GET("/resumes/:id", h.Gate.Authenticated(h.get)...)
	rg.PUT("/resumes/:id/latex", h.Gate.Protect(ratelimit.RouteLatexSave, h.saveLatex)...)
	rg.DELETE("/resumes/:id", h.Gate.Protect(ratelimit.RouteDelete, h.delete)...)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, documents.MaxResumeBytes+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Fail(c, apperr.Validation("File is too large (max 20MB)"))
			return
		}
		respond.Fail(c, apperr.Validation("A PDF file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Fail(c, apperr.Validation("Unable to read the uploaded file"))
		return
	}
	defer file.Close()

	analysis, err := h.Svc.Analyze(c.Request.Context(), AnalyzeInput{
		OwnerID: userID,
		Upload: documents.Upload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Body:        file,
		},
		JobTitle:       c.PostForm("jobTitle"),
		JobDescription: c.PostForm("jobDescription"),
		CompanyName:    c.PostForm("companyName"),
		ReasoningLevel: c.PostForm("reasoningLevel"),
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, analysis.ID)
	respond.Success(c, http.StatusOK, gin.H{
		"resumeId": analysis.ID,
		"feedback": analysis.Feedback,
	})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	analysis, err := h.Svc.Get(c.Request.Context(), id, middleware.UserIDFromContext(c))
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"resume": analysis})
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"resumes": items})
}

type saveLatexRequest struct {
	Latex string `json:"latex"`
}

func (h *Handler) saveLatex(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	var req saveLatexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	updatedAt, err := h.Svc.SaveLatex(c.Request.Context(), id, middleware.UserIDFromContext(c), req.Latex)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"updatedAt": updatedAt})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	if err := h.Svc.Delete(c.Request.Context(), id, middleware.UserIDFromContext(c)); err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{})
}
