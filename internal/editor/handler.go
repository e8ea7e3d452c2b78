package editor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/generation"
	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the editor service.
type Handler struct {
	Svc  *Service
	Gate middleware.Gate
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gate middleware.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

// RegisterRoutes attaches editor routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/editor/compile", h.Gate.Protect(ratelimit.RouteEditorCompile, h.compile)...)
	rg.POST("/editor/improve", h.Gate.Protect(ratelimit.RouteEditorImprove, h.improve)...)
}

type compileRequest struct {
	Latex string `json:"latex"`
}

func (h *Handler) compile(c *gin.Context) {
	// four bytes per rune, doubled for JSON escaping
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*generation.MaxLatexChars*4)
	var req compileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	pdf, err := h.Svc.Compile(c.Request.Context(), middleware.UserIDFromContext(c), req.Latex)
	if err != nil {
		var compileErr *CompileError
		if errors.As(err, &compileErr) {
			respond.WithLog(c, http.StatusUnprocessableEntity, "compile_error", "LaTeX compilation failed", compileErr.Log)
			return
		}
		respond.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="resume.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type improveRequest struct {
	ResumeID string `json:"resumeId"`
}

func (h *Handler) improve(c *gin.Context) {
	var req improveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	c.Set(middleware.ResumeIDKey, req.ResumeID)
	out, err := h.Svc.Improve(c.Request.Context(), middleware.UserIDFromContext(c), req.ResumeID)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{
		"improvedLatex":    out.ImprovedLatex,
		"changesApplied":   out.ChangesApplied,
		"sectionsModified": out.SectionsModified,
		"updatedAt":        out.UpdatedAt,
	})
}
