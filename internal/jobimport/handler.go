package jobimport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/documents"
	"resume-coach/internal/ratelimit"
	"resume-coach/internal/shared/apperr"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/server/respond"
)

const formOverhead = 1 << 20

// Handler wires HTTP handlers to the job import service.
type Handler struct {
	Svc  *Service
	Gate middleware.Gate
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gate middleware.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

// RegisterRoutes attaches job import routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import-job", h.Gate.Protect(ratelimit.RouteImportJob, h.importURL)...)
	rg.POST("/import-job-pdf", h.Gate.Protect(ratelimit.RouteImportJobPDF, h.importPDF)...)
}

type importRequest struct {
	URL string `json:"url"`
}

func (h *Handler) importURL(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, apperr.Validation("invalid request body"))
		return
	}
	job, err := h.Svc.FromURL(c.Request.Context(), middleware.UserIDFromContext(c), req.URL)
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"data": job})
}

func (h *Handler) importPDF(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, documents.MaxJobPDFBytes+formOverhead)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Fail(c, apperr.Validation("File is too large (max 10MB)"))
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

	job, err := h.Svc.FromPDF(c.Request.Context(), documents.Upload{
		Owner:       middleware.UserIDFromContext(c),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"data": job})
}
